package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/triage-backend/internal/entity"
)

const (
	reportTimeLayout = "2006-01-02 15:04 MST"
	disclaimer       = "This report is not a medical diagnosis. Consult a qualified healthcare professional, and call emergency services if symptoms are severe."
)

// section is one titled block of the report, shared by every output format
type section struct {
	Heading   string
	Paragraph string
	Fields    []field
	Items     []string
}

type field struct {
	Label string
	Value string
}

func buildSections(r *entity.TriageReport) []section {
	sections := []section{{
		Heading: "Summary",
		Fields: []field{
			{"Session", r.SessionID},
			{"Status", string(r.Status)},
			{"Generated", r.GeneratedAt.Format(reportTimeLayout)},
		},
	}}

	if r.Emergency != nil {
		sections = append(sections, section{
			Heading:   "Emergency Alert",
			Paragraph: r.Emergency.Message,
			Fields: []field{
				{"Type", r.Emergency.Type},
				{"Priority", fmt.Sprintf("%d", r.Emergency.Priority)},
			},
		})
	}

	responses := section{Heading: "Patient Responses"}
	for _, a := range r.Answers {
		responses.Fields = append(responses.Fields, field{a.Question, a.Answer})
	}
	sections = append(sections, responses)

	if d := r.Diagnosis; d != nil {
		assessment := section{
			Heading:   "Assessment",
			Paragraph: d.Answer,
		}
		if d.Urgency != "" {
			assessment.Fields = append(assessment.Fields, field{"Urgency", d.Urgency})
		}
		sections = append(sections, assessment)

		if len(d.Causes) > 0 {
			causes := section{Heading: "Possible Causes"}
			for _, c := range d.Causes {
				causes.Items = append(causes.Items, formatCause(c))
			}
			sections = append(sections, causes)
		}
		if len(d.RedFlags) > 0 {
			sections = append(sections, section{Heading: "Red Flags", Items: d.RedFlags})
		}
		if len(d.RecommendedTests) > 0 {
			sections = append(sections, section{Heading: "Recommended Tests", Items: d.RecommendedTests})
		}
		if len(d.AdditionalQuestions) > 0 {
			sections = append(sections, section{Heading: "Questions for Your Doctor", Items: d.AdditionalQuestions})
		}
	}

	return sections
}

func formatCause(c entity.Cause) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%.0f%%)", c.Cause, c.Value)

	var meta []string
	if c.Specialty != "" {
		meta = append(meta, c.Specialty)
	}
	if c.Urgency != "" {
		meta = append(meta, "urgency: "+c.Urgency)
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(meta, ", "))
	}
	if c.Explanation != "" {
		sb.WriteString(": " + c.Explanation)
	}
	return sb.String()
}
