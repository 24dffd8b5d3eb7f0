package triage

import (
	"time"

	"github.com/futig/triage-backend/internal/emergency"
	"github.com/futig/triage-backend/internal/entity"
	"github.com/futig/triage-backend/internal/questionnaire"
)

func toQuestionnaireState(s entity.QuestionnaireState) questionnaire.State {
	return questionnaire.State{
		CurrentIndex: s.CurrentIndex,
		Responses:    s.Responses,
		IsPetPatient: s.IsPetPatient,
		PetType:      s.PetType,
		Injected:     s.Injected,
	}
}

func toEntityQuestionnaireState(s questionnaire.State) entity.QuestionnaireState {
	return entity.QuestionnaireState{
		CurrentIndex: s.CurrentIndex,
		Responses:    s.Responses,
		IsPetPatient: s.IsPetPatient,
		PetType:      s.PetType,
		Injected:     s.Injected,
	}
}

func toQuestionDTO(q questionnaire.Question) *entity.QuestionDTO {
	return &entity.QuestionDTO{
		ID:      q.ID,
		Text:    q.Text,
		Type:    string(q.Type),
		Options: q.Options,
	}
}

func toProgressDTO(p questionnaire.Progress) entity.ProgressDTO {
	return entity.ProgressDTO{
		Current:    p.Current,
		Total:      p.Total,
		Percentage: p.Percentage,
	}
}

func toAnswerDTOs(answers []questionnaire.Answer) []entity.AnswerDTO {
	out := make([]entity.AnswerDTO, 0, len(answers))
	for _, a := range answers {
		out = append(out, entity.AnswerDTO{
			QuestionID: a.ID,
			Question:   a.Text,
			Answer:     a.Value,
		})
	}
	return out
}

func toEmergencyAlert(m *emergency.Match, questionID string, at time.Time) *entity.EmergencyAlert {
	if m == nil {
		return nil
	}
	return &entity.EmergencyAlert{
		Type:       m.Type,
		Message:    m.Message,
		Category:   m.Category,
		Priority:   m.Priority,
		QuestionID: questionID,
		DetectedAt: at,
	}
}

func toEmergencyMatch(m *emergency.Match) *entity.EmergencyMatch {
	if m == nil {
		return nil
	}
	return &entity.EmergencyMatch{
		Type:     m.Type,
		Message:  m.Message,
		Category: m.Category,
		Priority: m.Priority,
	}
}

func toCategoryDTOs(categories []emergency.Category) []entity.EmergencyCategoryDTO {
	out := make([]entity.EmergencyCategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, entity.EmergencyCategoryDTO{
			Name:     c.Name,
			Type:     c.Type,
			Message:  c.Message,
			Priority: c.Priority,
			Keywords: c.Keywords,
		})
	}
	return out
}
