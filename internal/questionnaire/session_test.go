package questionnaire

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/triage-backend/internal/emergency"
)

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSession_ValidateEmpty(t *testing.T) {
	s := NewSession(nil)

	for _, in := range []string{"", "   ", "\n\t"} {
		v := s.ValidateResponse(in)
		assert.False(t, v.Valid)
		assert.Equal(t, MsgEmptyResponse, v.Error)
	}
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSession_AgeValidation(t *testing.T) {
	t.Run("plain number", func(t *testing.T) {
		s := NewSession(nil)
		assert.True(t, s.ValidateResponse("35").Valid)
		assert.True(t, s.ValidateResponse("I am 35 years old").Valid)
		assert.False(t, s.IsPetPatient())
	})

	t.Run("out of range and non numeric", func(t *testing.T) {
		s := NewSession(nil)
		assert.Equal(t, MsgAgeOutOfRange, s.ValidateResponse("0").Error)
		assert.Equal(t, MsgAgeOutOfRange, s.ValidateResponse("121").Error)
		assert.Equal(t, MsgAgeOutOfRange, s.ValidateResponse("99999999999999999999999").Error)
		assert.Equal(t, MsgAgeNotNumber, s.ValidateResponse("thirty").Error)
	})

	t.Run("pet redirect", func(t *testing.T) {
		s := NewSession(nil)
		v := s.ValidateResponse("my dog is 3")
		assert.False(t, v.Valid)
		require.NotNil(t, v.Redirect)
		assert.Equal(t, RedirectNonHumanPatient, v.Redirect.Kind)
		assert.Equal(t, "dog", v.Redirect.Species)
		assert.Contains(t, v.Error, "veterinarian")
		assert.Contains(t, v.Error, "For your dog,")
		assert.True(t, s.IsPetPatient())
		assert.Contains(t, s.PetType(), "dog")
		assert.Equal(t, 0, s.CurrentIndex())
	})
}

func TestSession_GenderValidation(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"female", true},
		{"Male", true},
		{"prefer not to say", true},
		{"m", true},
		{"x", false},
		{"?", false},
		{"xy", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ValidateGender(tt.in)
			assert.Equal(t, tt.valid, v.Valid)
			if !tt.valid {
				assert.Equal(t, MsgGenderInvalid, v.Error)
			}
		})
	}

	v := ValidateGender("it's my cat")
	require.NotNil(t, v.Redirect)
	assert.Equal(t, "cat", v.Redirect.Species)
}

func TestSession_SymptomsValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
		species string
	}{
		{name: "too short", in: "ow", wantErr: MsgSymptomsShort},
		{name: "digits only", in: "12345", wantErr: MsgSymptomsNoWords},
		{name: "repeated char", in: "aaaaaa", wantErr: MsgSymptomsNoWords},
		{name: "my pet phrase", in: "My dog keeps vomiting", species: "dog"},
		{name: "pet verb phrase", in: "Our kitten seems lethargic", species: "kitten"},
		{name: "possessive", in: "rabbit's ear is swollen", species: "rabbit"},
		{name: "valid", in: "headache and mild fever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateSymptoms(tt.in)
			switch {
			case tt.wantErr != "":
				assert.False(t, v.Valid)
				assert.Equal(t, tt.wantErr, v.Error)
				assert.Nil(t, v.Redirect)
			case tt.species != "":
				assert.False(t, v.Valid)
				require.NotNil(t, v.Redirect)
				assert.Equal(t, tt.species, v.Redirect.Species)
				assert.Contains(t, v.Error, "If you have personal health concerns")
			default:
				assert.True(t, v.Valid)
			}
		})
	}
}

func TestSession_SeverityValidation(t *testing.T) {
	for _, in := range []string{"0", "11", "abc"} {
		assert.False(t, ValidateSeverity(in).Valid, in)
	}
	for i := 1; i <= 10; i++ {
		in := strconv.Itoa(i)
		assert.True(t, ValidateSeverity(in).Valid, in)
	}
	assert.Equal(t, MsgSeverityMissing, ValidateSeverity("abc").Error)
	assert.Equal(t, MsgSeverityRange, ValidateSeverity("11").Error)
}

func TestSession_CompleteAfterSixAnswers(t *testing.T) {
	s := NewSession(nil)
	answers := []string{"29", "female", "headache since yesterday", "1-2 days", "4", "none"}

	for _, a := range answers {
		require.False(t, s.IsComplete())
		s.AddResponse(a)
	}

	assert.True(t, s.IsComplete())
	assert.Equal(t, 100, s.Progress().Percentage)
	assert.Equal(t, 6, s.Progress().Total)
	_, ok := s.NextQuestion()
	assert.False(t, ok)

	s.AddResponse("ignored")
	assert.Len(t, s.StructuredResponses(), 6)
	assert.Equal(t, 6, s.CurrentIndex())
	assert.True(t, s.ValidateResponse("anything").Valid)
}

func TestSession_DynamicInjection(t *testing.T) {
	s := NewSession(nil)
	s.AddResponse("30")
	s.AddResponse("male")
	s.AddResponse("my skin has a red itchy rash")

	qs := s.Questions()
	require.Len(t, qs, 10)
	assert.Equal(t, []string{
		"age", "gender", "symptoms",
		"skin_location", "skin_appearance", "hygiene", "activities",
		"duration", "severity", "medical_history",
	}, ids(qs))

	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "skin_location", q.ID)

	// answering symptoms again must not splice twice
	s.GoToPreviousQuestion()
	s.AddResponse("the rash is itchy and spreading on my skin")
	assert.Len(t, s.Questions(), 10)
	assert.Equal(t, []string{"skin"}, s.Injected())
}

func TestSession_NoInjectionWithoutKeywords(t *testing.T) {
	s := NewSession(nil)
	s.AddResponse("30")
	s.AddResponse("male")
	s.AddResponse("sore throat and cough")

	assert.Len(t, s.Questions(), 6)
	assert.Empty(t, s.Injected())
}

func TestSession_Progress(t *testing.T) {
	s := NewSession(nil)
	assert.Equal(t, Progress{Current: 0, Total: 6, Percentage: 0}, s.Progress())

	s.AddResponse("40")
	assert.Equal(t, Progress{Current: 1, Total: 6, Percentage: 17}, s.Progress())

	s.AddResponse("female")
	s.AddResponse("itchy rash on arm")
	assert.Equal(t, Progress{Current: 3, Total: 10, Percentage: 30}, s.Progress())
}

func TestSession_SkipAndBack(t *testing.T) {
	s := NewSession(nil)

	s.GoToPreviousQuestion()
	assert.Equal(t, 0, s.CurrentIndex())

	s.SkipQuestion()
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, SkippedAnswer, s.StructuredResponses()["age"])

	s.GoToPreviousQuestion()
	assert.Equal(t, 0, s.CurrentIndex())
	s.AddResponse("50")
	assert.Equal(t, "50", s.StructuredResponses()["age"])

	for !s.IsComplete() {
		s.SkipQuestion()
	}
	s.GoToPreviousQuestion()
	assert.False(t, s.IsComplete())
	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "medical_history", q.ID)
}

func TestSession_Reset(t *testing.T) {
	s := NewSession(nil)
	s.ValidateResponse("my cat is 4")
	s.AddResponse("30")
	s.SkipQuestion()
	s.AddResponse("itchy skin")
	require.Len(t, s.Questions(), 10)
	require.True(t, s.IsPetPatient())

	s.Reset()

	assert.Equal(t, 0, s.CurrentIndex())
	assert.Empty(t, s.StructuredResponses())
	assert.Len(t, s.Questions(), 6)
	assert.False(t, s.IsPetPatient())
	assert.Empty(t, s.PetType())
	assert.Empty(t, s.Injected())
}

func TestSession_AllResponsesInQuestionOrder(t *testing.T) {
	s := NewSession(nil)
	s.AddResponse("30")
	s.AddResponse("male")
	s.AddResponse("rash on my leg")
	s.AddResponse("left calf")

	// revisit an earlier question; output still follows question order
	s.GoToPreviousQuestion()
	s.GoToPreviousQuestion()
	s.GoToPreviousQuestion()
	s.GoToPreviousQuestion()
	s.AddResponse("31")

	assert.Equal(t, "31\n\nmale\n\nrash on my leg\n\nleft calf", s.AllResponses())

	ordered := s.OrderedResponses()
	require.Len(t, ordered, 4)
	assert.Equal(t, "skin_location", ordered[3].ID)
	assert.Equal(t, "Where exactly is the itching or rash located? Is it spreading?", ordered[3].Text)
}

func TestSession_SnapshotRestore(t *testing.T) {
	s := NewSession(nil)
	s.AddResponse("30")
	s.ValidateResponse("my dog")
	s.AddResponse("male")
	s.AddResponse("itchy skin")

	st := s.Snapshot()
	raw, err := json.Marshal(st)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored, err := Restore(DefaultBank(), decoded)
	require.NoError(t, err)

	assert.Equal(t, s.CurrentIndex(), restored.CurrentIndex())
	assert.Equal(t, s.StructuredResponses(), restored.StructuredResponses())
	assert.Equal(t, ids(s.Questions()), ids(restored.Questions()))
	assert.True(t, restored.IsPetPatient())
	assert.Equal(t, "dog", restored.PetType())

	_, err = Restore(DefaultBank(), State{Injected: []string{"nope"}})
	assert.ErrorIs(t, err, ErrUnknownRule)

	_, err = Restore(DefaultBank(), State{CurrentIndex: 7})
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestSession_EndToEndWithEmergency(t *testing.T) {
	s := NewSession(nil)
	d := emergency.NewDetector(nil)

	answers := []string{
		"29",
		"female",
		"severe chest pain radiating to my arm",
		"Just started (less than 1 hour)",
		"9",
		"none",
	}

	var alert *emergency.Match
	for _, a := range answers {
		q, ok := s.CurrentQuestion()
		require.True(t, ok)

		v := s.ValidateResponse(a)
		require.True(t, v.Valid, "answer %q: %s", a, v.Error)

		if q.ID == SymptomsQuestionID {
			alert = d.Detect(a)
		}
		s.AddResponse(a)
	}

	require.NotNil(t, alert)
	assert.Equal(t, "CARDIAC EMERGENCY", alert.Type)
	assert.Equal(t, 1, alert.Priority)
	assert.True(t, s.IsComplete())
	assert.Len(t, s.StructuredResponses(), 6)
}
