package infrastructure

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrEmptyPDF = errors.New("empty pdf")

// ValidatePDF parses b and returns its page count.
func ValidatePDF(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyPDF
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(b), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return ctx.PageCount, nil
}
