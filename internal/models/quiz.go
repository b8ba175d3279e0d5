package models

import (
	"time"

	"gorm.io/gorm"
)

type QuestionSet struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Title     string         `json:"title" gorm:"not null"`
	IsActive  bool           `json:"is_active" gorm:"default:false"`
	CreatedBy uint           `json:"created_by"`
	Questions []Question     `json:"questions,omitempty" gorm:"foreignKey:QuestionSetID"`
}

type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	QuestionSetID uint           `json:"question_set_id"`
	Text          string         `json:"text" gorm:"not null"`
	Choices       []Choice       `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
}

// Choice carries the correct-answer flag. It must never reach a non-admin
// caller before grading; use ToDTO with includeAnswers=false on the way out.
type Choice struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	QuestionID    uint           `json:"question_id"`
	Label         string         `json:"label"`
	Text          string         `json:"text" gorm:"not null"`
	CorrectAnswer bool           `json:"correct_answer"`
}

// Attempt is the immutable grading record. Exactly one per (user, question set),
// enforced by the composite unique index. Never updated or deleted in normal flow,
// so there is no soft-delete column to fight the index.
type Attempt struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time         `json:"created_at"`
	UserID        uint              `json:"user_id" gorm:"not null;uniqueIndex:idx_attempts_user_set"`
	QuestionSetID uint              `json:"question_set_id" gorm:"not null;uniqueIndex:idx_attempts_user_set"`
	Score         int               `json:"score"`
	Total         int               `json:"total"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	Responses     []AttemptResponse `json:"responses,omitempty" gorm:"foreignKey:AttemptID"`
}

type AttemptResponse struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	AttemptID         uint   `json:"attempt_id" gorm:"not null;index"`
	QuestionID        uint   `json:"question_id"`
	SelectedChoiceIDs []uint `json:"selected_choice_ids" gorm:"serializer:json"`
}

// SubmittedResponse is one entry of a grading submission, already
// shape-validated by the transport layer.
type SubmittedResponse struct {
	QuestionID        uint   `json:"question_id"`
	SelectedChoiceIDs []uint `json:"selected_choice_ids"`
}
