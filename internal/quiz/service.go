package quiz

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"skillsync/internal/models"
)

// Store is the persistence surface of the grading engine. The gorm-backed
// Repository implements it; tests substitute an in-memory fake.
type Store interface {
	FindAttempt(userID, questionSetID uint) (*models.Attempt, error)
	CreateAttempt(attempt *models.Attempt) error
	GetQuestionSet(id uint) (*models.QuestionSet, error)
	CreateQuestionSet(set *models.QuestionSet) error
	ListQuestionSets(activeOnly bool) ([]models.QuestionSet, error)
	SetActive(id uint, active bool) (*models.QuestionSet, error)
	ListAttemptSummaries(userID uint) ([]models.AttemptSummary, error)
}

// SetCache is the read-through cache for authoritative question sets.
type SetCache interface {
	GetQuestionSet(id uint) (*models.QuestionSet, error)
	SetQuestionSet(set *models.QuestionSet) error
	InvalidateQuestionSet(id uint) error
}

type Service struct {
	store Store
	cache SetCache
	now   func() time.Time
}

func NewService(store Store, cache SetCache) *Service {
	return &Service{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// AttemptView is the result of ViewForAttempt: either the stored attempt
// summary (for users who already attempted) or the sanitized question set
// (for users who have not).
type AttemptView struct {
	Attempted   bool                   `json:"attempted"`
	Summary     *models.AttemptSummary `json:"summary,omitempty"`
	QuestionSet *models.QuestionSetDTO `json:"question_set,omitempty"`
}

// Grade converts a submission into an attempt record, exactly once per
// (user, question set). Replays return the stored result unchanged.
func (s *Service) Grade(principal models.Principal, questionSetID uint, responses []models.SubmittedResponse) (*models.GradeResult, error) {
	if responses == nil {
		return nil, fmt.Errorf("%w: responses are required", models.ErrInvalidArgument)
	}

	existing, err := s.store.FindAttempt(principal.ID, questionSetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &models.GradeResult{
			Score:            existing.Score,
			Total:            existing.Total,
			AlreadyAttempted: true,
		}, nil
	}

	set, err := s.getSet(questionSetID)
	if err != nil {
		return nil, err
	}

	// No prior attempt at this point, so inactive means no grading at all.
	if !set.IsActive {
		return nil, fmt.Errorf("%w: question set %d is inactive", models.ErrForbidden, questionSetID)
	}

	if set.Questions == nil {
		return nil, fmt.Errorf("%w: question set %d has no question data", models.ErrInvalidState, questionSetID)
	}

	score, total, graded := scoreResponses(set.Questions, responses)

	attempt := &models.Attempt{
		UserID:        principal.ID,
		QuestionSetID: questionSetID,
		Score:         score,
		Total:         total,
		SubmittedAt:   s.now(),
		Responses:     graded,
	}

	if err := s.store.CreateAttempt(attempt); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// A concurrent submission won the insert. Surface the winner's
			// result instead of an error; retries must be safe.
			winner, ferr := s.store.FindAttempt(principal.ID, questionSetID)
			if ferr == nil && winner != nil {
				log.Printf("Attempt race for user %d, set %d; returning stored result", principal.ID, questionSetID)
				return &models.GradeResult{
					Score:            winner.Score,
					Total:            winner.Total,
					AlreadyAttempted: true,
				}, nil
			}
		}
		return nil, err
	}

	return &models.GradeResult{Score: score, Total: total}, nil
}

// ViewForAttempt returns either the caller's stored result or the sanitized
// question set, never both and never the answer key.
func (s *Service) ViewForAttempt(principal models.Principal, questionSetID uint) (*AttemptView, error) {
	attempt, err := s.store.FindAttempt(principal.ID, questionSetID)
	if err != nil {
		return nil, err
	}

	set, err := s.getSet(questionSetID)
	if err != nil {
		return nil, err
	}

	if attempt != nil {
		return &AttemptView{
			Attempted: true,
			Summary: &models.AttemptSummary{
				QuestionSetID: set.ID,
				Title:         set.Title,
				Score:         attempt.Score,
				Total:         attempt.Total,
				Percentage:    Percentage(attempt.Score, attempt.Total),
				AttemptedAt:   attempt.SubmittedAt,
			},
		}, nil
	}

	// Unattempted users only ever see active sets, and never the answers.
	if !set.IsActive {
		return nil, fmt.Errorf("%w: question set %d is inactive", models.ErrForbidden, questionSetID)
	}

	dto := set.ToDTO(false)
	return &AttemptView{QuestionSet: &dto}, nil
}

// CreateQuestionSet is the admin path for authoring a set. New sets start inactive.
func (s *Service) CreateQuestionSet(principal models.Principal, set *models.QuestionSet) error {
	if !principal.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	if set.Title == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidArgument)
	}

	set.CreatedBy = principal.ID
	set.IsActive = false

	if err := s.store.CreateQuestionSet(set); err != nil {
		return err
	}

	if err := s.cache.SetQuestionSet(set); err != nil {
		log.Printf("Error caching question set %d: %v", set.ID, err)
	}
	return nil
}

// GetQuestionSetWithAnswers is the admin-only authoritative view.
func (s *Service) GetQuestionSetWithAnswers(principal models.Principal, id uint) (*models.QuestionSetDTO, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	set, err := s.getSet(id)
	if err != nil {
		return nil, err
	}
	dto := set.ToDTO(true)
	return &dto, nil
}

// ListQuestionSets shows admins everything; members only active sets.
func (s *Service) ListQuestionSets(principal models.Principal) ([]models.QuestionSet, error) {
	return s.store.ListQuestionSets(!principal.IsAdmin())
}

func (s *Service) SetActive(principal models.Principal, id uint, active bool) (*models.QuestionSet, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}

	set, err := s.store.SetActive(id, active)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateQuestionSet(id); err != nil {
		log.Printf("Error invalidating cached question set %d: %v", id, err)
	}
	return set, nil
}

func (s *Service) ListMyAttempts(principal models.Principal) ([]models.AttemptSummary, error) {
	return s.store.ListAttemptSummaries(principal.ID)
}

// getSet reads through the cache to the store, which holds the
// authoritative questions, choices and correct-answer flags.
func (s *Service) getSet(id uint) (*models.QuestionSet, error) {
	set, err := s.cache.GetQuestionSet(id)
	if err == nil {
		return set, nil
	}

	set, err = s.store.GetQuestionSet(id)
	if err != nil {
		return nil, err
	}

	if cerr := s.cache.SetQuestionSet(set); cerr != nil {
		log.Printf("Error caching question set %d: %v", id, cerr)
	}
	return set, nil
}

// scoreResponses applies exact-match scoring: a response is correct iff its
// selected choice ids equal the question's correct set. Entries that are
// structurally incomplete or reference unknown questions are skipped and do
// not count toward the total.
func scoreResponses(questions []models.Question, responses []models.SubmittedResponse) (score, total int, graded []models.AttemptResponse) {
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	for _, resp := range responses {
		if resp.QuestionID == 0 || resp.SelectedChoiceIDs == nil {
			continue
		}
		question, ok := byID[resp.QuestionID]
		if !ok || question.Choices == nil {
			continue
		}

		correctIDs := make(map[uint]bool)
		for _, choice := range question.Choices {
			if choice.CorrectAnswer {
				correctIDs[choice.ID] = true
			}
		}

		total++
		if selectionMatches(resp.SelectedChoiceIDs, correctIDs) {
			score++
		}
		graded = append(graded, models.AttemptResponse{
			QuestionID:        resp.QuestionID,
			SelectedChoiceIDs: resp.SelectedChoiceIDs,
		})
	}
	return score, total, graded
}

// selectionMatches is true iff selected and correct are equal as sets.
// No partial credit: extra picks and missing picks both fail.
func selectionMatches(selected []uint, correctIDs map[uint]bool) bool {
	seen := make(map[uint]bool, len(selected))
	for _, id := range selected {
		if !correctIDs[id] {
			return false
		}
		seen[id] = true
	}
	return len(seen) == len(correctIDs)
}

// Percentage rounds 100*score/total half-up; a zero total yields zero.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score*100) / float64(total)))
}
