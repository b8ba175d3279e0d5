package connection

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

type sendRequestBody struct {
	ReceiverID uint   `json:"receiver_id"`
	Message    string `json:"message"`
}

type respondBody struct {
	Decision Decision `json:"decision"`
}

func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body sendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	req, err := h.service.SendRequest(principal, body.ReceiverID, body.Message)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, req)
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestID, err := pathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var body respondBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	updated, err := h.service.Respond(principal, requestID, body.Decision)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	peers, err := h.service.ListConnections(principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, peers)
}

func (h *Handler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reqs, err := h.service.ListIncoming(principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, reqs)
}

func (h *Handler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	otherID, err := pathID(r, "userId")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	info, err := h.service.CheckStatus(principal, otherID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, info)
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrInvalidArgument, raw)
	}
	return uint(id), nil
}
