package uploader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ContentAgent/internal/config"
)

func writeTempReport(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "content_candidates_20240116_103045.csv")
	if err := os.WriteFile(path, []byte("source,title\nAWS News Blog,Test\n"), 0o644); err != nil {
		t.Fatalf("write temp report: %v", err)
	}
	return path
}

func TestUpload(t *testing.T) {
	t.Parallel()

	path := writeTempReport(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("folder_id"); got != "folder-1" {
			t.Errorf("unexpected folder_id: %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename != "content_candidates_20240116_103045.csv" {
			t.Errorf("unexpected filename: %s", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if len(body) == 0 {
			t.Error("uploaded file is empty")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "file-123"}`))
	}))
	defer server.Close()

	up := New(config.UploadConfig{Endpoint: server.URL, Token: "secret", FolderID: "folder-1"}, nil)

	id, err := up.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if id != "file-123" {
		t.Fatalf("unexpected file id: %s", id)
	}
}

func TestUploadServerError(t *testing.T) {
	t.Parallel()

	path := writeTempReport(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	up := New(config.UploadConfig{Endpoint: server.URL}, nil)

	if _, err := up.Upload(context.Background(), path); err == nil {
		t.Fatal("expected error on 403 response")
	}
}

func TestUploadMissingFileID(t *testing.T) {
	t.Parallel()

	path := writeTempReport(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	up := New(config.UploadConfig{Endpoint: server.URL}, nil)

	if _, err := up.Upload(context.Background(), path); err == nil {
		t.Fatal("expected error when response has no id")
	}
}

func TestUploadMissingFile(t *testing.T) {
	t.Parallel()

	up := New(config.UploadConfig{Endpoint: "http://localhost:1"}, nil)

	if _, err := up.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
