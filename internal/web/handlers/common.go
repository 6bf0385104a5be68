// Package handlers contains the HTTP handlers for the recognition API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/facegate/internal/constants"
	"github.com/kozaktomas/facegate/internal/extractor"
	"github.com/kozaktomas/facegate/internal/recognition"
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// readImageFile reads the "image" field from a multipart form. A missing
// file or an oversized upload reports 400 and returns nil.
func readImageFile(w http.ResponseWriter, r *http.Request) []byte {
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no image file provided")
		return nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image file")
		return nil
	}
	if int64(len(data)) > constants.MaxUploadBytes {
		respondError(w, http.StatusBadRequest, "image file is too large")
		return nil
	}
	return data
}

// respondServiceError maps recognition and extraction errors to HTTP status
// codes. Anything unrecognized is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *recognition.ValidationError
	var conflictErr *recognition.ConflictError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &conflictErr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error": "face already exists in database",
			"existingFace": map[string]any{
				"id":         conflictErr.ExistingID,
				"name":       conflictErr.ExistingName,
				"similarity": conflictErr.Similarity,
			},
		})
	case errors.Is(err, extractor.ErrNoFace),
		errors.Is(err, extractor.ErrMultipleFaces),
		errors.Is(err, extractor.ErrFaceTooSmall):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, extractor.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, recognition.ErrNoEnrolledFaces):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, recognition.ErrFaceNotFound):
		respondError(w, http.StatusNotFound, "face not found")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
