// Package detect orchestrates face detection against the external
// detection/embedding service: which detector tier to try, in what order,
// with what confidence thresholds. The detectors themselves live behind an
// HTTP boundary and are not part of this codebase.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/photo-faces/internal/identity"
)

// Detection is one detected face: its embedding, bounding box and score.
type Detection struct {
	Embedding []float32
	Box       identity.BoundingBox
	Score     float64
}

// Detector produces face detections for an image.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) ([]Detection, error)
}

// Client talks to one endpoint of the face detection service.
type Client struct {
	baseURL       string
	endpoint      string
	minConfidence float64
	client        *http.Client
}

// NewClient creates a detector client for one service endpoint. Detections
// scoring below minConfidence are discarded.
func NewClient(baseURL, endpoint string, minConfidence float64) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		endpoint:      endpoint,
		minConfidence: minConfidence,
		client:        &http.Client{},
	}
}

// faceDetection is one face in the service response.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse is the response of a detection endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the client's endpoint. The part carries an explicit
// Content-Type header based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectFaces runs detection for an image and returns faces above the
// client's confidence threshold.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]Detection, error) {
	body, err := c.postMultipartImage(ctx, imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var detections []Detection
	for _, f := range faceResp.Faces {
		if f.DetScore < c.minConfidence {
			continue
		}
		detections = append(detections, Detection{
			Embedding: f.Embedding,
			Box:       bboxToBox(f.BBox),
			Score:     f.DetScore,
		})
	}
	return detections, nil
}

// Healthy checks the service health endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// bboxToBox converts a service [x1, y1, x2, y2] bbox to pixel x/y/w/h.
func bboxToBox(bbox []float64) identity.BoundingBox {
	if len(bbox) != 4 {
		return identity.BoundingBox{}
	}
	x1 := math.Floor(bbox[0])
	y1 := math.Floor(bbox[1])
	x2 := math.Ceil(bbox[2])
	y2 := math.Ceil(bbox[3])
	return identity.BoundingBox{
		X:      int(x1),
		Y:      int(y1),
		Width:  int(x2 - x1),
		Height: int(y2 - y1),
	}
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
