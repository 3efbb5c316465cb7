package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// IngestStageKey is the echo context key under which the upload handler
// records the pipeline stage a failed ingestion aborted at, so the request
// log carries the classification without re-parsing the error.
const IngestStageKey = "ingest_stage"

// Logger emits one structured line per request: correlation id, route and
// outcome, plus the report-pipeline fields when they apply (the patientId
// route param and the failed ingest stage).
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			if rid, ok := c.Get("request_id").(string); ok && rid != "" {
				evt = evt.Str("request_id", rid)
			}
			if patientID := c.Param("patientId"); patientID != "" {
				evt = evt.Str("patient_id", patientID)
			}
			if stage, ok := c.Get(IngestStageKey).(string); ok && stage != "" {
				evt = evt.Str("stage", stage)
			}

			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
