package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/sources"
)

func TestVideoSummarize(t *testing.T) {
	files := &uploadTracker{}
	dir := t.TempDir()
	video := sources.NewVideoResolver(files, bytesDownloader(mp4Header), sources.VideoConfig{ScratchDir: dir, PollInterval: time.Millisecond})
	gen := &fakeGenerator{reply: replyWith("A short summary")}
	svc := NewVideoService(gen, video, "video-model")

	text, err := svc.Summarize(context.Background(), "https://youtu.be/x", "")
	if err != nil {
		t.Fatal(err)
	}
	if text != "A short summary" {
		t.Errorf("text = %q", text)
	}
	req := gen.last()
	if req.Model != "video-model" || req.JSON || !req.Parts[0].IsFile() || req.Parts[1].Text != llm.DefaultVideoPrompt {
		t.Errorf("request = %+v", req)
	}
	if files.dangling() != 0 {
		t.Errorf("dangling uploads: %d", files.dangling())
	}
	if names := scratchEntries(dir); len(names) != 0 {
		t.Errorf("scratch files left: %v", names)
	}
}

func TestVideoSummarizeFailureIsFatal(t *testing.T) {
	files := &uploadTracker{uploadErr: errBoom}
	video := sources.NewVideoResolver(files, bytesDownloader(mp4Header), sources.VideoConfig{ScratchDir: t.TempDir()})
	gen := &fakeGenerator{}

	if _, err := NewVideoService(gen, video, "").Summarize(context.Background(), "https://cdn.test/a.mp4", "Key points?"); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}
	if gen.calls() != 0 {
		t.Error("model should not be called")
	}
}

func TestVideoDeconstruct(t *testing.T) {
	gen := &fakeGenerator{reply: replyWith(`{"metadata":{"title":"T"}}`)}
	svc := NewVideoService(gen, sources.Unsupported{Err: errBoom}, "")

	if _, err := svc.Deconstruct(context.Background(), " ", ""); !errors.Is(err, models.ErrURLRequired) {
		t.Errorf("err = %v", err)
	}
	if _, err := svc.Deconstruct(context.Background(), "https://youtu.be/x", "focus on pricing"); err != nil {
		t.Fatal(err)
	}
	req := gen.last()
	if !req.JSON || req.Parts[0].FileURI != "https://youtu.be/x" {
		t.Errorf("request = %+v", req)
	}
}

func TestTextComplete(t *testing.T) {
	gen := &fakeGenerator{reply: replyWith("hi")}
	svc := NewTextService(gen, "text-model")
	if _, err := svc.Complete(context.Background(), "  "); !errors.Is(err, models.ErrPromptRequired) {
		t.Errorf("err = %v", err)
	}
	if text, err := svc.Complete(context.Background(), "hello"); err != nil || text != "hi" {
		t.Errorf("text = %q, %v", text, err)
	}
	if gen.last().Model != "text-model" {
		t.Errorf("model = %q", gen.last().Model)
	}
}
