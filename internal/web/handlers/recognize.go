package handlers

import (
	"net/http"

	"github.com/kozaktomas/facegate/internal/recognition"
)

// RecognizeHandler handles recognition endpoints.
type RecognizeHandler struct {
	service *recognition.Service
}

// NewRecognizeHandler creates a new recognition handler.
func NewRecognizeHandler(service *recognition.Service) *RecognizeHandler {
	return &RecognizeHandler{service: service}
}

// Recognize handles POST /api/v1/faces/recognize. Results for repeated
// submissions of the same image are served from the cache.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	h.recognize(w, r, false)
}

// RecognizeLive handles POST /api/v1/faces/recognize/live. Frames are
// ephemeral: no cache entry, no stored image, no recognition log.
func (h *RecognizeHandler) RecognizeLive(w http.ResponseWriter, r *http.Request) {
	h.recognize(w, r, true)
}

func (h *RecognizeHandler) recognize(w http.ResponseWriter, r *http.Request, ephemeral bool) {
	imageData := readImageFile(w, r)
	if imageData == nil {
		return
	}

	outcome, err := h.service.Recognize(r.Context(), recognition.Input{
		Bytes:     imageData,
		Ephemeral: ephemeral,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}
