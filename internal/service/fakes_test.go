package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/sources"
)

// fakeGenerator records every request and answers from reply.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []llm.Request
	reply    func(req llm.Request) (string, error)
	started  chan struct{}
	block    chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.reply == nil {
		return "{}", nil
	}
	return g.reply(req)
}

func (g *fakeGenerator) ReadsFileURIs() bool { return true }

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *fakeGenerator) last() llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

func replyWith(text string) func(llm.Request) (string, error) {
	return func(llm.Request) (string, error) { return text, nil }
}

// resolverFunc adapts a func to sources.Resolver.
type resolverFunc func(ctx context.Context, index int, src models.Source) (sources.Resolved, error)

func (f resolverFunc) Resolve(ctx context.Context, index int, src models.Source) (sources.Resolved, error) {
	return f(ctx, index, src)
}

type uploadTracker struct {
	mu        sync.Mutex
	uploadErr error
	uploaded  []string
	deleted   []string
}

func (u *uploadTracker) Upload(_ context.Context, path, mimeType, _ string) (*llm.File, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	name := "files/" + filepath.Base(path)
	u.uploaded = append(u.uploaded, name)
	return &llm.File{Name: name, URI: "https://provider.test/" + name, MIMEType: mimeType, State: llm.FileStateActive}, nil
}

func (u *uploadTracker) Get(_ context.Context, name string) (*llm.File, error) {
	return &llm.File{Name: name, State: llm.FileStateActive}, nil
}

func (u *uploadTracker) Delete(_ context.Context, name string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, name)
	return nil
}

func (u *uploadTracker) dangling() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploaded) - len(u.deleted)
}

var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")

type bytesDownloader []byte

func (b bytesDownloader) Download(_ context.Context, _ string, w io.Writer) error {
	_, err := w.Write(b)
	return err
}

func scratchEntries(dir string) []string {
	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var errBoom = errors.New("boom")
