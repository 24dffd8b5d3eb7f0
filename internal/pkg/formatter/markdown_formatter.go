package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/triage-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.TriageReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", reportTitle)

	for _, s := range buildSections(report) {
		fmt.Fprintf(&buf, "\n## %s\n\n", s.Heading)
		if s.Paragraph != "" {
			fmt.Fprintf(&buf, "%s\n\n", s.Paragraph)
		}
		for _, f := range s.Fields {
			fmt.Fprintf(&buf, "- **%s:** %s\n", f.Label, f.Value)
		}
		for _, item := range s.Items {
			fmt.Fprintf(&buf, "- %s\n", item)
		}
	}

	fmt.Fprintf(&buf, "\n---\n\n_%s_\n", disclaimer)
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
