package livestream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/facegate/internal/recognition"
)

var (
	_ Recognizer = (*ServiceRecognizer)(nil)
	_ Recognizer = (*APIRecognizer)(nil)
)

// ServiceRecognizer submits frames to an in-process recognition
// service. Frames are ephemeral: never cached, never logged.
type ServiceRecognizer struct {
	service *recognition.Service
}

// NewServiceRecognizer wraps a recognition service.
func NewServiceRecognizer(service *recognition.Service) *ServiceRecognizer {
	return &ServiceRecognizer{service: service}
}

// RecognizeFrame runs recognition on one frame.
func (r *ServiceRecognizer) RecognizeFrame(ctx context.Context, frame []byte) (*recognition.Outcome, error) {
	return r.service.Recognize(ctx, recognition.Input{Bytes: frame, Ephemeral: true})
}

// APIRecognizer submits frames to a remote facegate server over HTTP.
type APIRecognizer struct {
	baseURL string
	client  *http.Client
}

// NewAPIRecognizer creates a client for the given server base URL.
func NewAPIRecognizer(baseURL string) *APIRecognizer {
	return &APIRecognizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RecognizeFrame posts one frame to the live recognition endpoint. A
// server with no enrolled faces counts as a negative outcome rather
// than an error, so the capture loop keeps running.
func (r *APIRecognizer) RecognizeFrame(ctx context.Context, frame []byte) (*recognition.Outcome, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="frame.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(frame); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	url := r.baseURL + "/api/v1/faces/recognize/live"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return &recognition.Outcome{Recognized: false}, nil
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var outcome recognition.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &outcome, nil
}
