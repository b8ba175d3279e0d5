package message

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

type sendBody struct {
	Body string `json:"body"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	receiverID, err := pathID(r, "userId")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var body sendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	msg, err := h.service.Send(principal, receiverID, body.Body)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
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

	msgs, err := h.service.Conversation(principal, otherID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, msgs)
}

func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	msgs, err := h.service.Inbox(principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, msgs)
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrInvalidArgument, raw)
	}
	return uint(id), nil
}
