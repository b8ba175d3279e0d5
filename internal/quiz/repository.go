package quiz

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"skillsync/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindAttempt returns the attempt for the pair, or nil when none exists.
func (r *Repository) FindAttempt(userID, questionSetID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.db.Preload("Responses").
		Where("user_id = ? AND question_set_id = ?", userID, questionSetID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// CreateAttempt inserts the attempt; the composite unique index on
// (user_id, question_set_id) makes the insert race-safe. A losing insert
// comes back as ErrConflict for the service to absorb.
func (r *Repository) CreateAttempt(attempt *models.Attempt) error {
	err := r.db.Create(attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: attempt already recorded", models.ErrConflict)
		}
		log.Printf("Error creating attempt for user %d, set %d: %v", attempt.UserID, attempt.QuestionSetID, err)
		return err
	}
	return nil
}

// GetQuestionSet loads the authoritative set with questions, choices and
// correct-answer flags. Callers are responsible for sanitizing the output.
func (r *Repository) GetQuestionSet(id uint) (*models.QuestionSet, error) {
	var set models.QuestionSet
	err := r.db.Preload("Questions.Choices").First(&set, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question set %d", models.ErrNotFound, id)
		}
		log.Printf("Error getting question set %d: %v", id, err)
		return nil, err
	}
	return &set, nil
}

func (r *Repository) CreateQuestionSet(set *models.QuestionSet) error {
	err := r.db.Create(set).Error
	if err != nil {
		log.Printf("Error creating question set: %v", err)
		return err
	}
	log.Printf("Created question set %d", set.ID)
	return nil
}

func (r *Repository) ListQuestionSets(activeOnly bool) ([]models.QuestionSet, error) {
	var sets []models.QuestionSet
	q := r.db
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&sets).Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *Repository) SetActive(id uint, active bool) (*models.QuestionSet, error) {
	var set models.QuestionSet
	err := r.db.First(&set, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question set %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	set.IsActive = active
	if err := r.db.Save(&set).Error; err != nil {
		return nil, err
	}
	return &set, nil
}

// ListAttemptSummaries joins attempts with their set titles for the
// caller's review list.
func (r *Repository) ListAttemptSummaries(userID uint) ([]models.AttemptSummary, error) {
	var rows []struct {
		QuestionSetID uint
		Title         string
		Score         int
		Total         int
		SubmittedAt   time.Time
	}
	err := r.db.Raw(`
        SELECT a.question_set_id, qs.title, a.score, a.total, a.submitted_at
        FROM attempts a
        JOIN question_sets qs ON qs.id = a.question_set_id
        WHERE a.user_id = ?
        ORDER BY a.submitted_at DESC
    `, userID).Scan(&rows).Error
	if err != nil {
		log.Printf("Error listing attempts for user %d: %v", userID, err)
		return nil, err
	}
	summaries := make([]models.AttemptSummary, len(rows))
	for i, rw := range rows {
		summaries[i] = models.AttemptSummary{
			QuestionSetID: rw.QuestionSetID,
			Title:         rw.Title,
			Score:         rw.Score,
			Total:         rw.Total,
			Percentage:    Percentage(rw.Score, rw.Total),
			AttemptedAt:   rw.SubmittedAt,
		}
	}
	return summaries, nil
}
