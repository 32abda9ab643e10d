// Package hostmedia uploads recorded pitch videos to a hosted media service
// and returns a public playback URL.
package hostmedia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/opencrew/pitchboard/internal/capture"
	"github.com/opencrew/pitchboard/internal/errors"
)

var ErrUploadRejected = errors.NewSentinel("media upload rejected")

type Client struct {
	httpClient   *http.Client
	uploadURL    string
	uploadPreset string
	logger       *slog.Logger
}

func NewClient(uploadURL, uploadPreset string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		logger:       logger.With("source", "hostmedia.Client"),
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the media as an unsigned multipart upload and returns the
// public URL. Calling it with empty media is a programming error and fails
// before any network traffic.
func (c *Client) Upload(ctx context.Context, media capture.Media) (string, error) {
	if media.Empty() {
		return "", errors.New("refusing to upload empty media")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "pitch.webm")
	if err != nil {
		return "", errors.Wrap(err, "create multipart file part")
	}
	if _, err = part.Write(media.Bytes); err != nil {
		return "", errors.Wrap(err, "write media bytes")
	}
	if err = form.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", errors.Wrap(err, "write upload preset field")
	}
	if err = form.Close(); err != nil {
		return "", errors.Wrap(err, "finalize multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadRejected, errors.Wrap(err, "post media"))
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelError, "close upload response",
				errors.SlogError(errors.Wrap(err, "close response body")))
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadRejected, errors.Wrap(err, "read upload response"))
	}

	var parsed uploadResponse
	if err = json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadRejected,
			errors.Wrap(err, "decode upload response", slog.Int("status", resp.StatusCode)))
	}

	if resp.StatusCode >= http.StatusBadRequest || parsed.SecureURL == "" {
		message := parsed.Error.Message
		if message == "" {
			message = resp.Status
		}
		return "", fmt.Errorf("%w: %w", ErrUploadRejected,
			errors.New(message, slog.Int("status", resp.StatusCode)))
	}

	c.logger.LogAttrs(ctx, slog.LevelInfo, "media uploaded",
		slog.String("url", parsed.SecureURL), slog.Int("bytes", len(media.Bytes)))
	return parsed.SecureURL, nil
}
