// Package media talks to the remote media host that stores avatars, cover
// images, thumbnails and video files. The backend keeps only the hosted URLs.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Asset describes an uploaded file as reported by the media host.
type Asset struct {
	URL      string  `json:"secure_url"`
	Duration float64 `json:"duration,omitempty"` // seconds, video uploads only
}

// Uploader pushes a file to the media host and returns its hosted location.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*Asset, error)
}

// HTTPUploader is an Uploader backed by the media host's HTTP upload
// endpoint.
type HTTPUploader struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewHTTPUploader creates an uploader for the given endpoint. The API key is
// sent as a bearer credential on every upload.
func NewHTTPUploader(endpoint, apiKey string) *HTTPUploader {
	return &HTTPUploader{
		client:   &http.Client{Timeout: 2 * time.Minute},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// Upload posts the file as multipart form data and decodes the host's JSON
// response.
func (u *HTTPUploader) Upload(ctx context.Context, filename string, r io.Reader) (*Asset, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file into request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload to media host: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Warn().Int("status", resp.StatusCode).Str("file", filename).
			Msg("media host rejected upload")
		return nil, fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("decode media host response: %w", err)
	}
	if asset.URL == "" {
		return nil, fmt.Errorf("media host response missing url")
	}
	return &asset, nil
}

var _ Uploader = (*HTTPUploader)(nil)
