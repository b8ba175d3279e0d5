package models

import "time"

type ChoiceDTO struct {
	ID            uint   `json:"id"`
	Label         string `json:"label,omitempty"`
	Text          string `json:"text"`
	CorrectAnswer *bool  `json:"correct_answer,omitempty"` // admin view only
}

type QuestionDTO struct {
	ID      uint        `json:"id"`
	Text    string      `json:"text"`
	Choices []ChoiceDTO `json:"choices"`
}

type QuestionSetDTO struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	IsActive  *bool         `json:"is_active,omitempty"` // admin view only
	Questions []QuestionDTO `json:"questions"`
}

func (q Question) ToDTO(includeAnswers bool) QuestionDTO {
	choices := make([]ChoiceDTO, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = ChoiceDTO{
			ID:    c.ID,
			Label: c.Label,
			Text:  c.Text,
		}
		if includeAnswers {
			correct := c.CorrectAnswer
			choices[i].CorrectAnswer = &correct
		}
	}
	return QuestionDTO{
		ID:      q.ID,
		Text:    q.Text,
		Choices: choices,
	}
}

func (s QuestionSet) ToDTO(includeAnswers bool) QuestionSetDTO {
	questions := make([]QuestionDTO, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = q.ToDTO(includeAnswers)
	}
	dto := QuestionSetDTO{
		ID:        s.ID,
		Title:     s.Title,
		Questions: questions,
	}
	if includeAnswers {
		active := s.IsActive
		dto.IsActive = &active
	}
	return dto
}

// GradeResult is what the grading endpoint returns; AlreadyAttempted marks
// replayed submissions resolved from the stored attempt.
type GradeResult struct {
	Score            int  `json:"score"`
	Total            int  `json:"total"`
	AlreadyAttempted bool `json:"already_attempted"`
}

// AttemptSummary is the post-attempt review view. It never carries questions.
type AttemptSummary struct {
	QuestionSetID uint      `json:"question_set_id"`
	Title         string    `json:"title"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Percentage    int       `json:"percentage"`
	AttemptedAt   time.Time `json:"attempted_at"`
}

// ConnectionInfo describes the pair's state relative to the asking user.
type ConnectionInfo struct {
	Connected  bool `json:"connected"`
	IsPending  bool `json:"is_pending"`
	IsSender   bool `json:"is_sender"`
	IsReceiver bool `json:"is_receiver"`
}

// ConnectionPeer is one accepted connection mapped to the other party.
type ConnectionPeer struct {
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	Headline    string    `json:"headline"`
	AvatarRef   string    `json:"avatar_ref"`
	ConnectedAt time.Time `json:"connected_at"`
}
