package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	cfg "github.com/maheshrc27/repurpose-api/configs"
	"github.com/maheshrc27/repurpose-api/internal/models"
)

func TestR2Export(t *testing.T) {
	var mu sync.Mutex
	var method, path, contentType string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r2 := NewR2Service(cfg.R2{
		AccessKey:  "key",
		SecretKey:  "secret",
		BucketName: "exports",
		PublicURL:  "https://cdn.test/",
		Endpoint:   srv.URL,
	})
	url, err := r2.Export(context.Background(), &models.Session{ID: 7, Title: "T", Sources: []models.Source{}})
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut || !strings.HasPrefix(path, "/exports/sessions/7/") || !strings.HasSuffix(path, ".json") {
		t.Errorf("request = %s %s", method, path)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if !strings.HasPrefix(url, "https://cdn.test/sessions/7/") {
		t.Errorf("url = %q", url)
	}
	if !strings.Contains(string(body), `"title": "T"`) {
		t.Errorf("body = %s", body)
	}
	var probe map[string]any
	if i := strings.Index(string(body), "{"); i >= 0 {
		_ = json.Unmarshal(body[i:strings.LastIndex(string(body), "}")+1], &probe)
	}
	if probe["id"] != float64(7) {
		t.Errorf("exported session id = %v", probe["id"])
	}
}
