package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText reports a document that yields no extractable text. Sending an
// empty document to the understanding model would only invite fabrication.
var ErrNoText = errors.New("document contains no extractable text")

var pdfMagic = []byte("%PDF")

// DocumentText returns the textual representation of a document. PDFs are
// parsed for their plain text; anything else is treated as UTF-8 text.
func DocumentText(doc []byte, contentType string) (string, error) {
	var text string
	if strings.Contains(contentType, "pdf") || bytes.HasPrefix(doc, pdfMagic) {
		extracted, err := pdfText(doc)
		if err != nil {
			return "", fmt.Errorf("extract pdf text: %w", err)
		}
		text = extracted
	} else {
		text = string(doc)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pdfText(doc []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", err
	}
	return sb.String(), nil
}
