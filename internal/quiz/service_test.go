package quiz_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"skillsync/internal/models"
	"skillsync/internal/quiz"
)

type fakeStore struct {
	sets        map[uint]*models.QuestionSet
	attempts    map[string]*models.Attempt
	forceRace   bool
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sets:     make(map[uint]*models.QuestionSet),
		attempts: make(map[string]*models.Attempt),
	}
}

func attemptKey(userID, setID uint) string {
	return fmt.Sprintf("%d:%d", userID, setID)
}

func (s *fakeStore) FindAttempt(userID, questionSetID uint) (*models.Attempt, error) {
	a, ok := s.attempts[attemptKey(userID, questionSetID)]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (s *fakeStore) CreateAttempt(attempt *models.Attempt) error {
	s.createCalls++
	key := attemptKey(attempt.UserID, attempt.QuestionSetID)
	if s.forceRace {
		// Simulate a concurrent submission winning the insert.
		s.attempts[key] = &models.Attempt{
			UserID:        attempt.UserID,
			QuestionSetID: attempt.QuestionSetID,
			Score:         1,
			Total:         2,
			SubmittedAt:   time.Now(),
		}
		s.forceRace = false
		return fmt.Errorf("%w: attempt already recorded", models.ErrConflict)
	}
	if _, exists := s.attempts[key]; exists {
		return fmt.Errorf("%w: attempt already recorded", models.ErrConflict)
	}
	attempt.ID = uint(len(s.attempts) + 1)
	s.attempts[key] = attempt
	return nil
}

func (s *fakeStore) GetQuestionSet(id uint) (*models.QuestionSet, error) {
	set, ok := s.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: question set %d", models.ErrNotFound, id)
	}
	return set, nil
}

func (s *fakeStore) CreateQuestionSet(set *models.QuestionSet) error {
	set.ID = uint(len(s.sets) + 1)
	s.sets[set.ID] = set
	return nil
}

func (s *fakeStore) ListQuestionSets(activeOnly bool) ([]models.QuestionSet, error) {
	var out []models.QuestionSet
	for _, set := range s.sets {
		if activeOnly && !set.IsActive {
			continue
		}
		out = append(out, *set)
	}
	return out, nil
}

func (s *fakeStore) SetActive(id uint, active bool) (*models.QuestionSet, error) {
	set, ok := s.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: question set %d", models.ErrNotFound, id)
	}
	set.IsActive = active
	return set, nil
}

func (s *fakeStore) ListAttemptSummaries(userID uint) ([]models.AttemptSummary, error) {
	var out []models.AttemptSummary
	for _, a := range s.attempts {
		if a.UserID != userID {
			continue
		}
		title := ""
		if set, ok := s.sets[a.QuestionSetID]; ok {
			title = set.Title
		}
		out = append(out, models.AttemptSummary{
			QuestionSetID: a.QuestionSetID,
			Title:         title,
			Score:         a.Score,
			Total:         a.Total,
			Percentage:    quiz.Percentage(a.Score, a.Total),
			AttemptedAt:   a.SubmittedAt,
		})
	}
	return out, nil
}

type fakeCache struct{}

func (fakeCache) GetQuestionSet(id uint) (*models.QuestionSet, error) {
	return nil, errors.New("cache miss")
}
func (fakeCache) SetQuestionSet(set *models.QuestionSet) error { return nil }
func (fakeCache) InvalidateQuestionSet(id uint) error          { return nil }

var (
	learner = models.Principal{ID: 7, Role: models.RoleMember}
	admin   = models.Principal{ID: 1, Role: models.RoleAdmin}
)

// multiSelectSet has one multi-select question (correct: 11 and 12, wrong: 13)
// and one single-select question (correct: 21, wrong: 22).
func multiSelectSet(active bool) *models.QuestionSet {
	return &models.QuestionSet{
		ID:       1,
		Title:    "Go Fundamentals",
		IsActive: active,
		Questions: []models.Question{
			{
				ID:   10,
				Text: "Which are goroutine-safe?",
				Choices: []models.Choice{
					{ID: 11, CorrectAnswer: true},
					{ID: 12, CorrectAnswer: true},
					{ID: 13},
				},
			},
			{
				ID:   20,
				Text: "Which declares a constant?",
				Choices: []models.Choice{
					{ID: 21, CorrectAnswer: true},
					{ID: 22},
				},
			},
		},
	}
}

func newTestService(set *models.QuestionSet) (*quiz.Service, *fakeStore) {
	store := newFakeStore()
	if set != nil {
		store.sets[set.ID] = set
	}
	return quiz.NewService(store, fakeCache{}), store
}

func TestGradeExactMatchScoring(t *testing.T) {
	tests := []struct {
		name     string
		selected []uint
		correct  bool
	}{
		{"full match", []uint{11, 12}, true},
		{"full match different order", []uint{12, 11}, true},
		{"partial selection", []uint{11}, false},
		{"extra wrong choice", []uint{11, 12, 13}, false},
		{"empty selection", []uint{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service, _ := newTestService(multiSelectSet(true))
			result, err := service.Grade(learner, 1, []models.SubmittedResponse{
				{QuestionID: 10, SelectedChoiceIDs: tc.selected},
			})
			if err != nil {
				t.Fatalf("grade failed: %v", err)
			}
			if result.Total != 1 {
				t.Fatalf("expected total 1, got %d", result.Total)
			}
			want := 0
			if tc.correct {
				want = 1
			}
			if result.Score != want {
				t.Fatalf("expected score %d, got %d", want, result.Score)
			}
		})
	}
}

func TestGradeIdempotent(t *testing.T) {
	service, store := newTestService(multiSelectSet(true))
	responses := []models.SubmittedResponse{
		{QuestionID: 10, SelectedChoiceIDs: []uint{11, 12}},
		{QuestionID: 20, SelectedChoiceIDs: []uint{22}},
	}

	first, err := service.Grade(learner, 1, responses)
	if err != nil {
		t.Fatalf("first grade failed: %v", err)
	}
	if first.Score != 1 || first.Total != 2 || first.AlreadyAttempted {
		t.Fatalf("unexpected first result: %+v", first)
	}

	// Replaying with different answers must not change anything.
	second, err := service.Grade(learner, 1, []models.SubmittedResponse{
		{QuestionID: 10, SelectedChoiceIDs: []uint{13}},
	})
	if err != nil {
		t.Fatalf("second grade failed: %v", err)
	}
	if second.Score != first.Score || second.Total != first.Total {
		t.Fatalf("replay changed result: first %+v, second %+v", first, second)
	}
	if !second.AlreadyAttempted {
		t.Fatalf("expected replay to be flagged as already attempted")
	}
	if len(store.attempts) != 1 {
		t.Fatalf("expected exactly one attempt record, got %d", len(store.attempts))
	}
}

func TestGradeSkipsMalformedResponses(t *testing.T) {
	service, _ := newTestService(multiSelectSet(true))
	result, err := service.Grade(learner, 1, []models.SubmittedResponse{
		{QuestionID: 10, SelectedChoiceIDs: []uint{11, 12}}, // valid, correct
		{QuestionID: 0, SelectedChoiceIDs: []uint{11}},      // missing question id
		{QuestionID: 99, SelectedChoiceIDs: []uint{11}},     // unknown question
		{QuestionID: 20, SelectedChoiceIDs: nil},            // missing selection
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if result.Total != 1 || result.Score != 1 {
		t.Fatalf("expected 1/1 after skipping malformed entries, got %d/%d", result.Score, result.Total)
	}
}

func TestGradeNilResponses(t *testing.T) {
	service, _ := newTestService(multiSelectSet(true))
	_, err := service.Grade(learner, 1, nil)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestGradeUnknownSet(t *testing.T) {
	service, _ := newTestService(nil)
	_, err := service.Grade(learner, 42, []models.SubmittedResponse{})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGradeInactiveSet(t *testing.T) {
	service, store := newTestService(multiSelectSet(false))

	_, err := service.Grade(learner, 1, []models.SubmittedResponse{})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden for inactive set, got %v", err)
	}

	// A user who attempted before deactivation still gets their result back.
	store.attempts[attemptKey(learner.ID, 1)] = &models.Attempt{
		UserID: learner.ID, QuestionSetID: 1, Score: 2, Total: 2,
	}
	result, err := service.Grade(learner, 1, []models.SubmittedResponse{})
	if err != nil {
		t.Fatalf("grade after prior attempt failed: %v", err)
	}
	if result.Score != 2 || result.Total != 2 || !result.AlreadyAttempted {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGradeMalformedSet(t *testing.T) {
	set := &models.QuestionSet{ID: 1, Title: "Broken", IsActive: true, Questions: nil}
	service, _ := newTestService(set)
	_, err := service.Grade(learner, 1, []models.SubmittedResponse{})
	if !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestGradeInsertRaceAbsorbed(t *testing.T) {
	service, store := newTestService(multiSelectSet(true))
	store.forceRace = true

	result, err := service.Grade(learner, 1, []models.SubmittedResponse{
		{QuestionID: 10, SelectedChoiceIDs: []uint{13}},
	})
	if err != nil {
		t.Fatalf("race should be absorbed, got %v", err)
	}
	if !result.AlreadyAttempted {
		t.Fatalf("expected loser of the race to report already attempted")
	}
	if result.Score != 1 || result.Total != 2 {
		t.Fatalf("expected the winner's stored result, got %d/%d", result.Score, result.Total)
	}
	if len(store.attempts) != 1 {
		t.Fatalf("expected exactly one surviving attempt, got %d", len(store.attempts))
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 0},
		{3, 3, 100},
		{0, 5, 0},
		{1, 2, 50},
	}
	for _, tc := range tests {
		if got := quiz.Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestViewForAttemptAfterGrading(t *testing.T) {
	service, _ := newTestService(multiSelectSet(true))
	if _, err := service.Grade(learner, 1, []models.SubmittedResponse{
		{QuestionID: 10, SelectedChoiceIDs: []uint{11, 12}},
		{QuestionID: 20, SelectedChoiceIDs: []uint{21}},
	}); err != nil {
		t.Fatalf("grade failed: %v", err)
	}

	view, err := service.ViewForAttempt(learner, 1)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if !view.Attempted || view.Summary == nil {
		t.Fatalf("expected attempt summary, got %+v", view)
	}
	if view.QuestionSet != nil {
		t.Fatalf("attempted view must not include questions")
	}
	if view.Summary.Percentage != 100 {
		t.Fatalf("expected 100%%, got %d", view.Summary.Percentage)
	}
}

func TestViewForAttemptUnattempted(t *testing.T) {
	service, _ := newTestService(multiSelectSet(true))

	view, err := service.ViewForAttempt(learner, 1)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.Attempted || view.QuestionSet == nil {
		t.Fatalf("expected sanitized question set, got %+v", view)
	}
	if view.QuestionSet.IsActive != nil {
		t.Fatalf("is_active must be stripped from the learner view")
	}
	for _, q := range view.QuestionSet.Questions {
		for _, c := range q.Choices {
			if c.CorrectAnswer != nil {
				t.Fatalf("correct answers must be stripped from the learner view")
			}
		}
	}
}

func TestViewForAttemptInactiveUnattempted(t *testing.T) {
	service, _ := newTestService(multiSelectSet(false))
	_, err := service.ViewForAttempt(learner, 1)
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateQuestionSetRequiresAdmin(t *testing.T) {
	service, _ := newTestService(nil)

	err := service.CreateQuestionSet(learner, &models.QuestionSet{Title: "Nope"})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}

	set := &models.QuestionSet{Title: "Go Basics", IsActive: true}
	if err := service.CreateQuestionSet(admin, set); err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if set.IsActive {
		t.Fatalf("new sets must start inactive")
	}
	if set.CreatedBy != admin.ID {
		t.Fatalf("expected creator %d, got %d", admin.ID, set.CreatedBy)
	}
}

func TestGetQuestionSetWithAnswersRequiresAdmin(t *testing.T) {
	service, _ := newTestService(multiSelectSet(true))

	if _, err := service.GetQuestionSetWithAnswers(learner, 1); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}

	dto, err := service.GetQuestionSetWithAnswers(admin, 1)
	if err != nil {
		t.Fatalf("admin view failed: %v", err)
	}
	found := false
	for _, q := range dto.Questions {
		for _, c := range q.Choices {
			if c.CorrectAnswer != nil && *c.CorrectAnswer {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("admin view must include correct-answer flags")
	}
}
