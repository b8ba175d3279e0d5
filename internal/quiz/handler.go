package quiz

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"skillsync/internal/auth"
	"skillsync/internal/httpx"
	"skillsync/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type gradeRequest struct {
	Responses []models.SubmittedResponse `json:"responses"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	setID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	result, err := h.service.Grade(principal, setID, req.Responses)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) GetQuestionSet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	setID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	view, err := h.service.ViewForAttempt(principal, setID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) GetQuestionSetWithAnswers(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	setID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	dto, err := h.service.GetQuestionSetWithAnswers(principal, setID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, dto)
}

func (h *Handler) CreateQuestionSet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var set models.QuestionSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	if err := h.service.CreateQuestionSet(principal, &set); err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, set.ToDTO(true))
}

func (h *Handler) ListQuestionSets(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sets, err := h.service.ListQuestionSets(principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	out := make([]map[string]interface{}, len(sets))
	for i, s := range sets {
		out[i] = map[string]interface{}{
			"id":    s.ID,
			"title": s.Title,
		}
		if principal.IsAdmin() {
			out[i]["is_active"] = s.IsActive
			out[i]["created_by"] = s.CreatedBy
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	setID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	set, err := h.service.SetActive(principal, setID, req.Active)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"id":        set.ID,
		"is_active": set.IsActive,
	})
}

func (h *Handler) ListMyAttempts(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summaries, err := h.service.ListMyAttempts(principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, summaries)
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrInvalidArgument, raw)
	}
	return uint(id), nil
}
