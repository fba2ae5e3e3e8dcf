package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/sources"
)

func partTexts(parts []llm.Part) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if p.IsFile() {
			out[i] = "FILE " + p.FileURI
			continue
		}
		out[i] = p.Text
	}
	return out
}

func TestOrchestratePreservesOrderRegardlessOfCompletion(t *testing.T) {
	gen := &fakeGenerator{}
	// source 0 finishes last
	resolver := resolverFunc(func(ctx context.Context, index int, src models.Source) (sources.Resolved, error) {
		if index == 0 {
			time.Sleep(50 * time.Millisecond)
		}
		return sources.Inline("content " + src.URL), nil
	})
	orch := NewOrchestratorService(gen, resolver, OrchestratorConfig{Concurrency: 2, Model: "m"})

	_, err := orch.Orchestrate(context.Background(), []models.Source{
		{Type: models.SourceArticle, URL: "https://a.test"},
		{Type: models.SourceYoutube, URL: "https://youtu.be/x"},
	})
	if err != nil {
		t.Fatal(err)
	}

	req := gen.last()
	if !req.JSON || req.Model != "m" {
		t.Errorf("request = %+v", req)
	}
	got := partTexts(req.Parts)
	want := []string{
		"--- SOURCE 0 (ARTICLE) ---",
		"content https://a.test",
		"--- SOURCE 1 (YOUTUBE) ---",
		"content https://youtu.be/x",
	}
	if len(got) != 5 {
		t.Fatalf("got %d parts: %q", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !strings.HasPrefix(got[4], "--- FINAL INSTRUCTION ---") || !strings.Contains(got[4], "BALANCED SYNTHESIS") {
		t.Errorf("final part = %q", got[4])
	}
}

func TestOrchestrateTextFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	gen := &fakeGenerator{reply: replyWith(`{"metadata":{}}`)}
	set := sources.NewResolverSet(sources.NewTextResolver(srv.Client(), 0), sources.NewPDFResolver(true, nil, "", 0), sources.Unsupported{Err: errBoom})
	orch := NewOrchestratorService(gen, set, OrchestratorConfig{})

	url := srv.URL + "/article"
	text, err := orch.Orchestrate(context.Background(), []models.Source{{Type: models.SourceArticle, URL: url}})
	if err != nil {
		t.Fatalf("text failure must not abort: %v", err)
	}
	if text != `{"metadata":{}}` {
		t.Errorf("text = %q", text)
	}
	content := gen.last().Parts[1]
	if content.Text == "" || !strings.Contains(content.Text, url) {
		t.Errorf("placeholder = %q", content.Text)
	}
}

func newVideoSet(t *testing.T, files *uploadTracker) (*sources.ResolverSet, string) {
	t.Helper()
	dir := t.TempDir()
	video := sources.NewVideoResolver(files, bytesDownloader(mp4Header), sources.VideoConfig{ScratchDir: dir, PollInterval: time.Millisecond, PollTimeout: time.Second})
	return sources.NewResolverSet(resolverFunc(func(ctx context.Context, i int, src models.Source) (sources.Resolved, error) {
		return sources.Inline("text"), nil
	}), sources.NewPDFResolver(true, nil, "", 0), video), dir
}

func TestOrchestrateVideoFailureAborts(t *testing.T) {
	files := &uploadTracker{uploadErr: errBoom}
	set, dir := newVideoSet(t, files)
	gen := &fakeGenerator{}
	orch := NewOrchestratorService(gen, set, OrchestratorConfig{VideoPolicy: VideoPolicyAbort})

	_, err := orch.Orchestrate(context.Background(), []models.Source{
		{Type: models.SourceArticle, URL: "https://a.test"},
		{Type: models.SourceYoutube, URL: "https://youtu.be/x"},
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}
	if gen.calls() != 0 {
		t.Error("model should not be called after an aborted batch")
	}
	if names := scratchEntries(dir); len(names) != 0 {
		t.Errorf("scratch files left: %v", names)
	}
	if files.dangling() != 0 {
		t.Errorf("dangling uploads: %d", files.dangling())
	}
}

func TestOrchestrateVideoFailureDegrades(t *testing.T) {
	files := &uploadTracker{uploadErr: errBoom}
	set, _ := newVideoSet(t, files)
	gen := &fakeGenerator{}
	orch := NewOrchestratorService(gen, set, OrchestratorConfig{})

	if _, err := orch.Orchestrate(context.Background(), []models.Source{{Type: models.SourceYoutube, URL: "https://youtu.be/x"}}); err != nil {
		t.Fatal(err)
	}
	if p := gen.last().Parts[1]; p.IsFile() || !strings.Contains(p.Text, "https://youtu.be/x") {
		t.Errorf("expected placeholder, got %+v", p)
	}
}

func TestOrchestrateReleasesUploadsAfterModelCall(t *testing.T) {
	files := &uploadTracker{}
	set, dir := newVideoSet(t, files)
	gen := &fakeGenerator{reply: func(req llm.Request) (string, error) {
		if files.dangling() != 1 {
			t.Errorf("upload should be alive during the model call")
		}
		return "", errBoom
	}}
	orch := NewOrchestratorService(gen, set, OrchestratorConfig{})

	_, err := orch.Orchestrate(context.Background(), []models.Source{{Type: models.SourceVideo, URL: "https://cdn.test/a.mp4"}})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}
	if p := gen.last().Parts[1]; !p.IsFile() || p.MIMEType != "video/mp4" {
		t.Errorf("video part = %+v", p)
	}
	if files.dangling() != 0 {
		t.Errorf("dangling uploads: %d", files.dangling())
	}
	if names := scratchEntries(dir); len(names) != 0 {
		t.Errorf("scratch files left: %v", names)
	}
}

func TestOrchestrateDirectMode(t *testing.T) {
	gen := &fakeGenerator{}
	orch := NewOrchestratorService(gen, nil, OrchestratorConfig{Mode: ModeDirect})

	_, err := orch.Orchestrate(context.Background(), []models.Source{
		{Type: models.SourceYoutube, URL: "https://youtu.be/x"},
		{Type: models.SourceArticle, URL: "https://a.test/report.pdf"},
		{Type: models.SourceBlog, URL: "https://blog.test/post"},
	})
	if err != nil {
		t.Fatal(err)
	}
	parts := gen.last().Parts
	if !parts[1].IsFile() || parts[1].MIMEType != "video/mp4" {
		t.Errorf("youtube part = %+v", parts[1])
	}
	if !parts[3].IsFile() || parts[3].MIMEType != "application/pdf" {
		t.Errorf("pdf part = %+v", parts[3])
	}
	if parts[5].IsFile() || !strings.Contains(parts[5].Text, "https://blog.test/post") {
		t.Errorf("article part = %+v", parts[5])
	}
}

func TestOrchestrateValidation(t *testing.T) {
	orch := NewOrchestratorService(&fakeGenerator{}, nil, OrchestratorConfig{})
	if _, err := orch.Orchestrate(context.Background(), nil); !errors.Is(err, models.ErrNoSources) {
		t.Errorf("err = %v", err)
	}
	if _, err := orch.Orchestrate(context.Background(), []models.Source{{URL: " "}}); !errors.Is(err, models.ErrEmptyURL) {
		t.Errorf("err = %v", err)
	}
}
