package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"skillsync/internal/models"
)

// JSON writes v as a JSON response body.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
	}
}

// Error maps domain errors to HTTP statuses. Anything outside the taxonomy
// is a 500 with a generic body.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrInvalidState):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		log.Printf("Unhandled error: %v", err)
	}

	JSON(w, status, map[string]string{"error": message})
}
