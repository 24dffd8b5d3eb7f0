package questionnaire

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	MsgEmptyResponse   = "Please provide a response."
	MsgAgeNotNumber    = "Please provide your age as a number (e.g., 25)."
	MsgAgeOutOfRange   = "Please provide a valid age between 1 and 120."
	MsgGenderInvalid   = "Please specify your biological sex (e.g., male, female, or prefer not to say)."
	MsgSymptomsShort   = "Please provide more detail about your symptoms (at least 5 characters)."
	MsgSymptomsNoWords = "Please describe your symptoms using words."
	MsgSeverityMissing = "Please provide a number between 1 and 10 to rate the severity."
	MsgSeverityRange   = "Please provide a severity rating between 1 and 10."
)

const (
	minAge          = 1
	maxAge          = 120
	minSeverity     = 1
	maxSeverity     = 10
	minSymptomsLen  = 5
	minGenderLength = 2
)

// PetKeywords are scanned in order; the first hit names the species
var PetKeywords = []string{
	"dog", "cat", "pet", "puppy", "kitten", "fish", "bird", "rabbit", "hamster",
	"guinea pig", "ferret", "reptile", "snake", "lizard", "turtle", "parrot", "canary",
}

var genderTokens = []string{
	"male", "female", "man", "woman", "m", "f", "non-binary", "nonbinary",
	"other", "prefer not to say", "prefer not", "rather not",
}

var (
	digitGroup = regexp.MustCompile(`\b(\d+)\b`)
	hasLetter  = regexp.MustCompile(`[a-zA-Z]`)
	petPhrases = buildPetPhrases()
)

func buildPetPhrases() []*regexp.Regexp {
	alt := strings.Join(PetKeywords, "|")
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)my (` + alt + `)`),
		regexp.MustCompile(`(?i)the (` + alt + `)`),
		regexp.MustCompile(`(?i)(` + alt + `) (is|has|seems|appears|looks)`),
		regexp.MustCompile(`(?i)(` + alt + `)'s`),
	}
}

func petReferral(species string) string {
	return fmt.Sprintf("I appreciate you reaching out! However, I'm designed to provide health assessments for humans only. "+
		"For your %s, I strongly recommend consulting with a licensed veterinarian who can properly examine and treat your pet. "+
		"Veterinary care is essential for accurate diagnosis and treatment of animals. 🐾", species)
}

func petSymptomsReferral(species string) string {
	return fmt.Sprintf("I appreciate you reaching out about your %[1]s! However, I'm designed to provide health assessments for humans only. "+
		"For your %[1]s, I strongly recommend consulting with a licensed veterinarian who can properly examine and treat your pet. "+
		"Veterinary care is essential for accurate diagnosis and treatment of animals. 🐾\n\n"+
		"If you have personal health concerns, I'm here to help with those!", species)
}

func petRedirect(species, msg string) Validation {
	return Validation{
		Valid:    false,
		Error:    msg,
		Redirect: &Redirect{Kind: RedirectNonHumanPatient, Species: species},
	}
}

// DetectPetKeyword returns the first pet keyword contained in text
func DetectPetKeyword(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range PetKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// DetectPetPhrase looks for possessive or referential pet phrasing such as "my dog" or "cat's"
func DetectPetPhrase(text string) (string, bool) {
	for _, re := range petPhrases {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if m[1] == "" {
			return "pet", true
		}
		return m[1], true
	}
	return "", false
}

// firstInt extracts the first standalone digit group
func firstInt(text string) (int, bool) {
	m := digitGroup.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// overflow is still a number, just out of every range
		return math.MaxInt, true
	}
	return n, true
}

func ValidateAge(answer string) Validation {
	if species, ok := DetectPetKeyword(answer); ok {
		return petRedirect(species, petReferral(species))
	}

	age, ok := firstInt(answer)
	if !ok {
		return invalid(MsgAgeNotNumber)
	}
	if age < minAge || age > maxAge {
		return invalid(MsgAgeOutOfRange)
	}
	return valid()
}

func ValidateGender(answer string) Validation {
	if species, ok := DetectPetKeyword(answer); ok {
		return petRedirect(species, petReferral(species))
	}

	lower := strings.ToLower(strings.TrimSpace(answer))
	for _, tok := range genderTokens {
		if strings.Contains(lower, tok) {
			return valid()
		}
	}
	if len([]rune(answer)) < minGenderLength {
		return invalid(MsgGenderInvalid)
	}
	return valid()
}

func ValidateSymptoms(answer string) Validation {
	if len([]rune(answer)) < minSymptomsLen {
		return invalid(MsgSymptomsShort)
	}
	if !hasLetter.MatchString(answer) || isSingleRepeatedChar(answer) {
		return invalid(MsgSymptomsNoWords)
	}
	if species, ok := DetectPetPhrase(answer); ok {
		return petRedirect(species, petSymptomsReferral(species))
	}
	return valid()
}

func ValidateSeverity(answer string) Validation {
	n, ok := firstInt(answer)
	if !ok {
		return invalid(MsgSeverityMissing)
	}
	if n < minSeverity || n > maxSeverity {
		return invalid(MsgSeverityRange)
	}
	return valid()
}

func isSingleRepeatedChar(s string) bool {
	r := []rune(s)
	if len(r) < 2 {
		return false
	}
	for _, c := range r[1:] {
		if c != r[0] {
			return false
		}
	}
	return true
}

// FirstNumber returns the first standalone integer in text, as the age and severity validators read it
func FirstNumber(text string) (int, bool) {
	return firstInt(text)
}
