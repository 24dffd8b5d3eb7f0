package questionnaire

import "strings"

// Base question ids
const (
	AgeQuestionID            = "age"
	GenderQuestionID         = "gender"
	SymptomsQuestionID       = "symptoms"
	DurationQuestionID       = "duration"
	SeverityQuestionID       = "severity"
	MedicalHistoryQuestionID = "medical_history"
)

// DurationOptions are offered as quick replies; any duration text is accepted
var DurationOptions = []string{
	"Just started (less than 1 hour)",
	"Few hours",
	"1-2 days",
	"3-7 days",
	"1-2 weeks",
	"Several weeks",
	"Months or longer",
}

// DynamicRule adds follow-up questions when the symptoms answer contains any keyword
type DynamicRule struct {
	Name      string
	Keywords  []string
	Questions []Question
}

// Matches reports whether text contains one of the rule keywords, case-insensitively
func (r DynamicRule) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Bank is the shared question configuration. It is built once and must not be
// modified after sessions start using it.
type Bank struct {
	Base []Question
	// Anchor is the question id after which injected questions are placed
	Anchor string
	Rules  []DynamicRule
}

// DefaultBank returns the standard intake questions with the skin follow-up rule
func DefaultBank() *Bank {
	return &Bank{
		Base:   BaseQuestions(),
		Anchor: SymptomsQuestionID,
		Rules:  []DynamicRule{SkinRule()},
	}
}

func BaseQuestions() []Question {
	return []Question{
		{
			ID:       AgeQuestionID,
			Text:     "What is your age?",
			Type:     QuestionTypeNumber,
			Validate: ValidateAge,
		},
		{
			ID:       GenderQuestionID,
			Text:     "What is your biological sex assigned at birth? (Male, Female, or prefer not to say)",
			Type:     QuestionTypeOpen,
			Validate: ValidateGender,
		},
		{
			ID:       SymptomsQuestionID,
			Text:     "What brings you here today? Please describe your main symptoms or health concerns in as much detail as possible.",
			Type:     QuestionTypeOpen,
			Validate: ValidateSymptoms,
		},
		{
			ID:       DurationQuestionID,
			Text:     "How long have you been experiencing these symptoms?",
			Type:     QuestionTypeDuration,
			Options:  DurationOptions,
			Validate: acceptAny,
		},
		{
			ID:       SeverityQuestionID,
			Text:     "On a scale of 1-10, how severe are your symptoms? (1 = very mild, barely noticeable | 10 = extremely severe, unbearable)",
			Type:     QuestionTypeScale,
			Validate: ValidateSeverity,
		},
		{
			ID:       MedicalHistoryQuestionID,
			Text:     "Do you have any relevant medical history, current medications, or allergies I should know about? Also, is there anything specific that triggered these symptoms or makes them better/worse?",
			Type:     QuestionTypeOpen,
			Validate: acceptAny,
		},
	}
}

func SkinRule() DynamicRule {
	return DynamicRule{
		Name:     "skin",
		Keywords: []string{"itch", "rash", "skin"},
		Questions: []Question{
			{
				ID:       "skin_location",
				Text:     "Where exactly is the itching or rash located? Is it spreading?",
				Type:     QuestionTypeOpen,
				Validate: acceptAny,
			},
			{
				ID:       "skin_appearance",
				Text:     "Can you describe any changes in the skin (redness, bumps, blisters, scaling, etc)?",
				Type:     QuestionTypeOpen,
				Validate: acceptAny,
			},
			{
				ID:       "hygiene",
				Text:     "Have you changed soaps, detergents, or personal hygiene routines recently?",
				Type:     QuestionTypeOpen,
				Validate: acceptAny,
			},
			{
				ID:       "activities",
				Text:     "Have you participated in any activities that may have exposed your skin to irritants (hiking, swimming, new clothing)?",
				Type:     QuestionTypeOpen,
				Validate: acceptAny,
			},
		},
	}
}

func (b *Bank) rule(name string) (DynamicRule, bool) {
	for _, r := range b.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return DynamicRule{}, false
}

// effective builds the ordered question list for the given injected rules
func (b *Bank) effective(injected []string) []Question {
	if len(injected) == 0 {
		out := make([]Question, len(b.Base))
		copy(out, b.Base)
		return out
	}

	var extra []Question
	for _, name := range injected {
		if r, ok := b.rule(name); ok {
			extra = append(extra, r.Questions...)
		}
	}

	out := make([]Question, 0, len(b.Base)+len(extra))
	placed := false
	for _, q := range b.Base {
		out = append(out, q)
		if q.ID == b.Anchor {
			out = append(out, extra...)
			placed = true
		}
	}
	if !placed {
		out = append(out, extra...)
	}
	return out
}
