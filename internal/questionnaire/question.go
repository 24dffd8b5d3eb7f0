package questionnaire

// QuestionType defines the validation contract of a question
type QuestionType string

const (
	QuestionTypeNumber   QuestionType = "number"
	QuestionTypeOpen     QuestionType = "open"
	QuestionTypeDuration QuestionType = "duration"
	QuestionTypeScale    QuestionType = "scale"
)

// RedirectNonHumanPatient tags answers that are about an animal rather than the user
const RedirectNonHumanPatient = "non_human_patient"

// Question is an immutable intake question definition
type Question struct {
	ID      string
	Text    string
	Type    QuestionType
	Options []string
	// Validate receives the trimmed, non-empty answer. Nil accepts anything.
	Validate func(answer string) Validation
}

// Validation is the outcome of checking one answer.
// Redirect is set when the answer concerns a non-human patient.
type Validation struct {
	Valid    bool      `json:"valid"`
	Error    string    `json:"error,omitempty"`
	Redirect *Redirect `json:"redirect,omitempty"`
}

type Redirect struct {
	Kind    string `json:"kind"`
	Species string `json:"species"`
}

// Answer is a recorded response paired with its question
type Answer struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func valid() Validation {
	return Validation{Valid: true}
}

func invalid(msg string) Validation {
	return Validation{Valid: false, Error: msg}
}

func acceptAny(string) Validation {
	return valid()
}
