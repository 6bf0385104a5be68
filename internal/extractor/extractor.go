// Package extractor is the HTTP client for the face descriptor service.
// Given raw image bytes it returns exactly one fixed-length descriptor plus
// a detection box and score, or one of the extraction precondition errors.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/facegate/internal/descriptor"
)

const (
	defaultExtractorURL = "http://localhost:8000"
	defaultMinFaceSize  = 50
)

// Extraction precondition errors. These are returned verbatim to the client;
// a bad image will not improve on retry, so none of them are retried.
var (
	ErrNoFace        = errors.New("no face detected in the image")
	ErrMultipleFaces = errors.New("multiple faces detected; please use an image with a single face")
	ErrFaceTooSmall  = errors.New("detected face is too small")
	ErrUnavailable   = errors.New("descriptor service unavailable")
)

// Client computes face descriptors using the descriptor service.
type Client struct {
	baseURL     string
	minFaceSize int
	client      *http.Client
}

// NewClient creates a new descriptor service client.
func NewClient(baseURL string, minFaceSize int) *Client {
	if baseURL == "" {
		baseURL = defaultExtractorURL
	}
	if minFaceSize <= 0 {
		minFaceSize = defaultMinFaceSize
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		minFaceSize: minFaceSize,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// faceDetection represents a single detected face in the service response
type faceDetection struct {
	FaceIndex  int       `json:"face_index"`
	Dim        int       `json:"dim"`
	Descriptor []float32 `json:"descriptor"`
	BBox       []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore   float64   `json:"det_score"`
}

// faceResponse represents the response from the descriptor endpoint
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Result contains the extracted descriptor and its detection metadata.
type Result struct {
	Descriptor descriptor.Descriptor
	BBox       []float64 // [x1, y1, x2, y2] in raw pixel coordinates
	DetScore   float64
	Dim        int
	Model      string
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries an explicit Content-Type header
// based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	mimeType := detectMIMEType(imageData)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ExtractDescriptor detects faces in the image and returns the descriptor of
// the single detected face. Fails with ErrNoFace, ErrMultipleFaces or
// ErrFaceTooSmall when the image does not contain exactly one usable face.
func (c *Client) ExtractDescriptor(ctx context.Context, imageData []byte) (*Result, error) {
	body, err := c.postMultipartImage(ctx, "/extract/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	switch {
	case faceResp.FacesCount == 0 || len(faceResp.Faces) == 0:
		return nil, ErrNoFace
	case faceResp.FacesCount > 1 || len(faceResp.Faces) > 1:
		return nil, ErrMultipleFaces
	}

	face := faceResp.Faces[0]
	if len(face.Descriptor) == 0 {
		return nil, errors.New("empty descriptor returned")
	}

	if w, h, ok := bboxSize(face.BBox); ok {
		if w < float64(c.minFaceSize) || h < float64(c.minFaceSize) {
			return nil, fmt.Errorf("%w: %.0fx%.0f px, minimum %d px", ErrFaceTooSmall, w, h, c.minFaceSize)
		}
	}

	return &Result{
		Descriptor: descriptor.Descriptor(face.Descriptor),
		BBox:       face.BBox,
		DetScore:   face.DetScore,
		Dim:        face.Dim,
		Model:      faceResp.Model,
	}, nil
}

// Health checks whether the descriptor service is reachable and ready.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// bboxSize returns the width and height of a [x1, y1, x2, y2] bounding box.
func bboxSize(bbox []float64) (float64, float64, bool) {
	if len(bbox) != 4 {
		return 0, 0, false
	}
	return bbox[2] - bbox[0], bbox[3] - bbox[1], true
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
