package formatter

import (
	"bytes"
	"os"
	"strings"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live.
	// In Docker runtime we copy fonts to /app/ttf,
	// so for the compiled binary the path is ./ttf/DejaVuSans.ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	// 1) Try runtime-relative path from current working directory.
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}

	// 2) Try source-relative path (useful in local dev).
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}

	return ""
}

func (mf *PDFFormatter) Format(report *entity.TriageReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Try to use UTF-8 capable DejaVuSans font, bundled with the project.
	fontName := "Arial"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		// Register regular and bold styles under the same family name
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		translate = func(s string) string { return s }
	}
	text := func(s string) string {
		return translate(stripSymbols(s))
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, text(reportTitle))
	pdf.Ln(14)

	for _, s := range buildSections(report) {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, text(s.Heading))
		pdf.Ln(10)

		pdf.SetFont(fontName, "", 11)
		_, size := pdf.GetFontSize()
		lineHeight := size * 1.5

		if s.Paragraph != "" {
			pdf.MultiCell(0, lineHeight, text(s.Paragraph), "", "", false)
			pdf.Ln(2)
		}
		for _, f := range s.Fields {
			pdf.SetFont(fontName, "B", 11)
			pdf.Write(lineHeight, text(f.Label+": "))
			pdf.SetFont(fontName, "", 11)
			pdf.Write(lineHeight, text(f.Value))
			pdf.Ln(lineHeight)
		}
		for _, item := range s.Items {
			pdf.MultiCell(0, lineHeight, text("- "+item), "", "", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont(fontName, "", 9)
	pdf.MultiCell(0, 5, text(disclaimer), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripSymbols drops characters outside the Basic Multilingual Plane, such as emoji, which the bundled font cannot draw
func stripSymbols(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return -1
		}
		return r
	}, s))
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
