package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/triage-backend/internal/config"
	"github.com/futig/triage-backend/internal/entity"
	"github.com/google/uuid"
)

// Validator checks request shape before it reaches the use case.
// Answer content is judged by the questionnaire, not here.
type Validator struct {
	cfg config.ValidatorConfig
}

func NewValidator(cfg config.ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateSessionID rejects ids that are not UUIDs
func (v *Validator) ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: session id", entity.ErrMissingField)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: session id %q", entity.ErrInvalidFormat, id)
	}
	return nil
}

// ValidateSubmitAnswer caps the answer length. A blank answer passes through
// so the questionnaire can re-prompt for it.
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if req.IsSkipped {
		return nil
	}
	if utf8.RuneCountInString(req.Answer) > v.cfg.MaxAnswerLength {
		return fmt.Errorf("%w: answer exceeds %d characters", entity.ErrInvalidParameter, v.cfg.MaxAnswerLength)
	}
	return nil
}

func (v *Validator) ValidateEmergencyCheck(req *entity.EmergencyCheckRequest) error {
	text, ok := req.Text.(string)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(text) > v.cfg.MaxAnswerLength {
		return fmt.Errorf("%w: text exceeds %d characters", entity.ErrInvalidParameter, v.cfg.MaxAnswerLength)
	}
	return nil
}

func (v *Validator) ValidateAddKeyword(req *entity.AddKeywordRequest) error {
	if strings.TrimSpace(req.Category) == "" {
		return fmt.Errorf("%w: category", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Keyword) == "" {
		return fmt.Errorf("%w: keyword", entity.ErrMissingField)
	}
	if utf8.RuneCountInString(req.Keyword) > v.cfg.MaxKeywordLength {
		return fmt.Errorf("%w: keyword exceeds %d characters", entity.ErrInvalidParameter, v.cfg.MaxKeywordLength)
	}
	if req.Priority < 0 {
		return fmt.Errorf("%w: priority must be positive", entity.ErrInvalidParameter)
	}
	return nil
}

// ValidateReportFormat defaults an empty format to markdown
func (v *Validator) ValidateReportFormat(format string) (entity.ResultFormat, error) {
	if format == "" {
		return entity.FormatMarkdown, nil
	}
	f := entity.ResultFormat(strings.ToLower(format))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: format %q (allowed: markdown, pdf, docx)", entity.ErrInvalidFormat, format)
	}
	return f, nil
}
