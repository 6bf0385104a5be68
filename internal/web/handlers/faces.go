package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facegate/internal/database"
	"github.com/kozaktomas/facegate/internal/recognition"
)

// FacesHandler handles face enrollment and management endpoints.
type FacesHandler struct {
	service *recognition.Service
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(service *recognition.Service) *FacesHandler {
	return &FacesHandler{service: service}
}

// faceResponse is the public view of an enrolled face. The raw
// descriptor never leaves the server.
type faceResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"imagePath"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func toFaceResponse(face *database.EnrolledFace) faceResponse {
	resp := faceResponse{
		ID:        face.ID,
		Name:      face.Name,
		ImagePath: face.ImagePath,
		CreatedAt: face.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if !face.UpdatedAt.IsZero() {
		resp.UpdatedAt = face.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// Enroll handles POST /api/v1/faces/enroll
func (h *FacesHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	imageData := readImageFile(w, r)
	if imageData == nil {
		return
	}

	name := r.FormValue("name")
	result, err := h.service.Enroll(r.Context(), name, imageData)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("Enrolled face %d (%s)", result.Face.ID, sanitizeForLog(result.Face.Name))
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "face enrolled successfully",
		"data": map[string]any{
			"id":         result.Face.ID,
			"name":       result.Face.Name,
			"imagePath":  result.Face.ImagePath,
			"confidence": result.Confidence,
		},
	})
}

// List handles GET /api/v1/faces with an optional ?q= name filter
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	faces, err := h.service.ListFaces(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	responses := make([]faceResponse, 0, len(faces))
	for i := range faces {
		responses = append(responses, toFaceResponse(&faces[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(responses),
		"data":  responses,
	})
}

// Get handles GET /api/v1/faces/{id}
func (h *FacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid face id")
		return
	}

	face, err := h.service.GetFace(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": toFaceResponse(face)})
}

// Delete handles DELETE /api/v1/faces/{id}
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid face id")
		return
	}

	if err := h.service.DeleteFace(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("Deleted face %d", id)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "face deleted successfully",
		"data":    map[string]int64{"id": id},
	})
}
