package formatter

import (
	"bytes"

	"github.com/futig/triage-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(report *entity.TriageReport) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(reportTitle)

	for _, s := range buildSections(report) {
		heading := doc.AddParagraph()
		heading.SetStyle("Heading1")
		heading.AddRun().AddText(s.Heading)

		if s.Paragraph != "" {
			doc.AddParagraph().AddRun().AddText(s.Paragraph)
		}
		for _, f := range s.Fields {
			par := doc.AddParagraph()
			label := par.AddRun()
			label.Properties().SetBold(true)
			label.AddText(f.Label + ": ")
			par.AddRun().AddText(f.Value)
		}
		for _, item := range s.Items {
			par := doc.AddParagraph()
			par.SetStyle("ListBullet")
			par.AddRun().AddText(item)
		}
	}

	doc.AddParagraph()
	footer := doc.AddParagraph().AddRun()
	footer.Properties().SetItalic(true)
	footer.AddText(disclaimer)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
