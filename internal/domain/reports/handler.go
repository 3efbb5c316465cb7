package reports

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medledger/medledger/internal/platform/middleware"
	"github.com/medledger/medledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/upload", h.UploadReport)
	api.GET("/reports/:patientId", h.ListReports)
	api.GET("/reports/:patientId/summary", h.GetSummary)
}

// UploadReport runs the full ingestion pipeline for one multipart upload
// carrying a file plus patientId and hospitalId form fields.
func (h *Handler) UploadReport(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload: "+err.Error())
	}
	defer file.Close()

	record, err := h.svc.Ingest(
		c.Request().Context(),
		c.FormValue("patientId"),
		c.FormValue("hospitalId"),
		file,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		stage := FailedStage(err)
		c.Set(middleware.IngestStageKey, string(stage))
		return echo.NewHTTPError(statusForStage(stage), err.Error())
	}
	return c.JSON(http.StatusCreated, record)
}

// ListReports returns the patient's history newest first. No reports is an
// empty list, not an error.
func (h *Handler) ListReports(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(), c.Param("patientId"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*ReportRecord{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"reports": items,
		"total":   total,
	})
}

func (h *Handler) GetSummary(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func statusForStage(stage Stage) int {
	switch stage {
	case StageValidation:
		return http.StatusBadRequest
	case StageNotarize, StageExtract:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
