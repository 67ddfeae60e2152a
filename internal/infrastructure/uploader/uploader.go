// Package uploader ships report files to an archive endpoint over HTTP.
// The endpoint receives the file as multipart form data and answers with
// the stored file id.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ContentAgent/internal/config"
	"ContentAgent/internal/ports"
)

// HTTPUploader implements the upload port against a configured endpoint.
type HTTPUploader struct {
	endpoint string
	token    string
	folderID string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Uploader = (*HTTPUploader)(nil)

// New builds an uploader from configuration.
func New(cfg config.UploadConfig, logger *slog.Logger) *HTTPUploader {
	return &HTTPUploader{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		folderID: cfg.FolderID,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

// Upload posts the file at path to the endpoint and returns the file id
// from the response body.
func (u *HTTPUploader) Upload(ctx context.Context, path string) (string, error) {
	if u.endpoint == "" {
		return "", fmt.Errorf("uploader misconfigured: endpoint is empty")
	}

	body, contentType, err := u.buildForm(path)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("upload error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("upload response carried no file id")
	}

	u.debug("file uploaded", "path", path, "file_id", parsed.ID)
	return parsed.ID, nil
}

// buildForm assembles the multipart body: the report file plus the target
// folder id when one is configured.
func (u *HTTPUploader) buildForm(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", path, err)
	}

	if u.folderID != "" {
		if err := form.WriteField("folder_id", u.folderID); err != nil {
			return nil, "", fmt.Errorf("write folder field: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, form.FormDataContentType(), nil
}

func (u *HTTPUploader) debug(msg string, args ...interface{}) {
	if u.logger != nil {
		u.logger.Debug(msg, args...)
	}
}
