package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/facegate/internal/database"
	"github.com/kozaktomas/facegate/internal/database/mock"
)

func TestStatsHandler(t *testing.T) {
	faces := mock.NewMockFaceRepository()
	faces.AddFace(database.EnrolledFace{Name: "Alice", Descriptor: []float32{0.1}})

	logs := mock.NewMockLogRepository()
	logs.Add(context.Background(), 1, 0.9, "uploads/a.jpg")

	handler := NewStatsHandler(newTestService(t, &fakeExtractor{}, faces, logs))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result struct {
		TotalFaces        int           `json:"totalFaces"`
		TotalRecognitions int           `json:"totalRecognitions"`
		RecentLogs        []logResponse `json:"recentLogs"`
	}
	parseJSONResponse(t, recorder, &result)

	if result.TotalFaces != 1 {
		t.Errorf("expected 1 face, got %d", result.TotalFaces)
	}
	if result.TotalRecognitions != 1 {
		t.Errorf("expected 1 recognition, got %d", result.TotalRecognitions)
	}
	if len(result.RecentLogs) != 1 {
		t.Errorf("expected 1 recent log, got %d", len(result.RecentLogs))
	}
}

func TestLogsHandler(t *testing.T) {
	logs := mock.NewMockLogRepository()
	logs.Add(context.Background(), 1, 0.9, "uploads/a.jpg")
	logs.Add(context.Background(), 2, 0.8, "uploads/b.jpg")

	handler := NewStatsHandler(newTestService(t, &fakeExtractor{}, mock.NewMockFaceRepository(), logs))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit=1", nil)
	recorder := httptest.NewRecorder()
	handler.Logs(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result struct {
		Count int           `json:"count"`
		Data  []logResponse `json:"data"`
	}
	parseJSONResponse(t, recorder, &result)

	if result.Count != 1 {
		t.Errorf("expected 1 log with limit=1, got %d", result.Count)
	}
	// Newest entry comes back first.
	if len(result.Data) == 1 && result.Data[0].Confidence != 0.8 {
		t.Errorf("expected newest log first, got confidence %f", result.Data[0].Confidence)
	}
}

func TestLogsHandler_InvalidLimit(t *testing.T) {
	handler := NewStatsHandler(newTestService(t, &fakeExtractor{}, mock.NewMockFaceRepository(), mock.NewMockLogRepository()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit=zero", nil)
	recorder := httptest.NewRecorder()
	handler.Logs(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid limit")
}
