package questionnaire

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// SkippedAnswer is recorded for skipped questions
const SkippedAnswer = "Not specified"

var (
	ErrUnknownRule   = errors.New("unknown dynamic rule")
	ErrInvalidCursor = errors.New("question index out of range")
)

// Session is the mutable state of one intake conversation.
// It is not safe for concurrent use; callers serialise turns.
type Session struct {
	bank         *Bank
	index        int
	responses    map[string]string
	isPetPatient bool
	petType      string
	injected     []string
}

// State is a serialisable snapshot of a Session
type State struct {
	CurrentIndex int               `json:"current_index"`
	Responses    map[string]string `json:"responses"`
	IsPetPatient bool              `json:"is_pet_patient"`
	PetType      string            `json:"pet_type,omitempty"`
	Injected     []string          `json:"injected,omitempty"`
}

func NewSession(bank *Bank) *Session {
	if bank == nil {
		bank = DefaultBank()
	}
	return &Session{
		bank:      bank,
		responses: make(map[string]string),
	}
}

// Restore rebuilds a session from a snapshot taken with the same bank
func Restore(bank *Bank, st State) (*Session, error) {
	s := NewSession(bank)

	for _, name := range st.Injected {
		if _, ok := s.bank.rule(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
	}
	s.injected = append(s.injected, st.Injected...)

	if st.CurrentIndex < 0 || st.CurrentIndex > len(s.Questions()) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCursor, st.CurrentIndex)
	}
	s.index = st.CurrentIndex

	for k, v := range st.Responses {
		s.responses[k] = v
	}
	s.isPetPatient = st.IsPetPatient
	s.petType = st.PetType

	return s, nil
}

func (s *Session) Snapshot() State {
	responses := make(map[string]string, len(s.responses))
	for k, v := range s.responses {
		responses[k] = v
	}
	var injected []string
	if len(s.injected) > 0 {
		injected = append(injected, s.injected...)
	}
	return State{
		CurrentIndex: s.index,
		Responses:    responses,
		IsPetPatient: s.isPetPatient,
		PetType:      s.petType,
		Injected:     injected,
	}
}

// Questions returns the effective question order, including injected follow-ups
func (s *Session) Questions() []Question {
	return s.bank.effective(s.injected)
}

func (s *Session) CurrentIndex() int {
	return s.index
}

func (s *Session) IsComplete() bool {
	return s.index >= len(s.Questions())
}

func (s *Session) IsPetPatient() bool {
	return s.isPetPatient
}

func (s *Session) PetType() string {
	return s.petType
}

func (s *Session) Injected() []string {
	out := make([]string, len(s.injected))
	copy(out, s.injected)
	return out
}

func (s *Session) CurrentQuestion() (Question, bool) {
	qs := s.Questions()
	if s.index >= len(qs) {
		return Question{}, false
	}
	return qs[s.index], true
}

// NextQuestion returns the prompt text of the current question, or false when complete
func (s *Session) NextQuestion() (string, bool) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return "", false
	}
	return q.Text, true
}

// ValidateResponse checks raw against the current question without advancing.
// A non-human patient redirect also marks the session as a pet patient.
func (s *Session) ValidateResponse(raw string) Validation {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return invalid(MsgEmptyResponse)
	}

	q, ok := s.CurrentQuestion()
	if !ok || q.Validate == nil {
		return valid()
	}

	v := q.Validate(trimmed)
	if v.Redirect != nil && v.Redirect.Kind == RedirectNonHumanPatient {
		s.isPetPatient = true
		s.petType = v.Redirect.Species
	}
	return v
}

// AddResponse records raw for the current question and advances.
// It does not validate and is a no-op once complete.
func (s *Session) AddResponse(raw string) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return
	}

	s.responses[q.ID] = raw
	if q.ID == s.bank.Anchor {
		s.inject(raw)
	}
	s.index++
}

func (s *Session) SkipQuestion() {
	q, ok := s.CurrentQuestion()
	if !ok {
		return
	}
	s.responses[q.ID] = SkippedAnswer
	s.index++
}

func (s *Session) GoToPreviousQuestion() {
	if s.index > 0 {
		s.index--
	}
}

func (s *Session) Reset() {
	s.index = 0
	s.responses = make(map[string]string)
	s.isPetPatient = false
	s.petType = ""
	s.injected = nil
}

// inject evaluates dynamic rules once per session
func (s *Session) inject(answer string) {
	if len(s.injected) > 0 {
		return
	}
	for _, r := range s.bank.Rules {
		if r.Matches(answer) {
			s.injected = append(s.injected, r.Name)
		}
	}
}

// OrderedResponses returns recorded answers in question order
func (s *Session) OrderedResponses() []Answer {
	qs := s.Questions()
	out := make([]Answer, 0, len(s.responses))
	for _, q := range qs {
		v, ok := s.responses[q.ID]
		if !ok {
			continue
		}
		out = append(out, Answer{ID: q.ID, Text: q.Text, Value: v})
	}
	return out
}

// AllResponses joins recorded answers in question order, separated by a blank line
func (s *Session) AllResponses() string {
	answers := s.OrderedResponses()
	parts := make([]string, len(answers))
	for i, a := range answers {
		parts[i] = a.Value
	}
	return strings.Join(parts, "\n\n")
}

func (s *Session) StructuredResponses() map[string]string {
	out := make(map[string]string, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

func (s *Session) Progress() Progress {
	total := len(s.Questions())
	current := s.index
	if current > total {
		current = total
	}
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(current) / float64(total) * 100))
	}
	return Progress{Current: current, Total: total, Percentage: pct}
}
