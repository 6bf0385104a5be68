package handlers

import (
	"net/http"
	"strconv"

	"github.com/kozaktomas/facegate/internal/database"
	"github.com/kozaktomas/facegate/internal/recognition"
)

const defaultLogLimit = 50

// StatsHandler handles statistics and recognition log endpoints.
type StatsHandler struct {
	service *recognition.Service
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(service *recognition.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

type logResponse struct {
	ID         int64   `json:"id"`
	FaceID     *int64  `json:"faceId"`
	PersonName string  `json:"personName,omitempty"`
	Confidence float64 `json:"confidence"`
	ImagePath  string  `json:"imagePath,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

func toLogResponses(logs []database.RecognitionLog) []logResponse {
	responses := make([]logResponse, 0, len(logs))
	for _, entry := range logs {
		responses = append(responses, logResponse{
			ID:         entry.ID,
			FaceID:     entry.FaceID,
			PersonName: entry.FaceName,
			Confidence: entry.Confidence,
			ImagePath:  entry.ImagePath,
			CreatedAt:  entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return responses
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"totalFaces":        stats.TotalFaces,
		"totalRecognitions": stats.TotalRecognitions,
		"recentLogs":        toLogResponses(stats.RecentRecognitions),
	})
}

// Logs handles GET /api/v1/logs with an optional ?limit= parameter
func (h *StatsHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	logs, err := h.service.RecentLogs(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(logs),
		"data":  toLogResponses(logs),
	})
}
