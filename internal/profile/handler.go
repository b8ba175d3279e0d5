package profile

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

const maxAvatarSize = 5 << 20 // 5 MiB

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.service.Get(principal)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var update ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid request body", models.ErrInvalidArgument))
		return
	}

	user, err := h.service.Update(principal, update)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		httpx.Error(w, fmt.Errorf("%w: invalid id %q", models.ErrInvalidArgument, raw))
		return
	}

	user, err := h.service.GetPublic(uint(id))
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		httpx.Error(w, fmt.Errorf("%w: invalid multipart form", models.ErrInvalidArgument))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httpx.Error(w, fmt.Errorf("%w: avatar file is required", models.ErrInvalidArgument))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	user, err := h.service.UploadAvatar(r.Context(), principal, header.Filename, file, header.Size, contentType)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, user)
}
