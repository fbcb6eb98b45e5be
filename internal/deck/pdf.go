package deck

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/youruser/sonicstencil/internal/layout"
)

func newPDF(paper layout.PaperSize, now time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", paper.Name, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("SonicStencil cards", true)
	pdf.SetCreator("sonicstencil", true)
	pdf.SetCreationDate(now)
	return pdf
}

// verifyPDF parses the finished document and checks it has the planned
// number of pages.
func verifyPDF(b []byte, want int) error {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(b), model.NewDefaultConfiguration())
	if err != nil {
		return fmt.Errorf("deck: validating pdf: %w", err)
	}
	if ctx.PageCount != want {
		return fmt.Errorf("deck: pdf has %d pages, planned %d", ctx.PageCount, want)
	}
	return nil
}
