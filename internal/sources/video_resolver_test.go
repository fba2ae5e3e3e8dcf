package sources

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
)

// mp4Header is enough of an ISO BMFF header for content sniffing.
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")

type fakeDownloader struct {
	body []byte
	err  error
}

func (d fakeDownloader) Download(_ context.Context, _ string, w io.Writer) error {
	if d.err != nil {
		return d.err
	}
	_, err := w.Write(d.body)
	return err
}

type fakeFileStore struct {
	mu        sync.Mutex
	uploadErr error
	states    []llm.FileState
	uploaded  []string
	deleted   []string
	polls     int
}

func (f *fakeFileStore) Upload(_ context.Context, path, mimeType, _ string) (*llm.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	name := "files/" + filepath.Base(path)
	f.uploaded = append(f.uploaded, name)
	return &llm.File{Name: name, URI: "https://provider.test/" + name, MIMEType: mimeType, State: llm.FileStateProcessing}, nil
}

func (f *fakeFileStore) Get(_ context.Context, name string) (*llm.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := llm.FileStateProcessing
	if f.polls < len(f.states) {
		state = f.states[f.polls]
	}
	f.polls++
	return &llm.File{Name: name, URI: "https://provider.test/" + name, MIMEType: "video/mp4", State: state}, nil
}

func (f *fakeFileStore) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, name)
	return nil
}

// dangling reports uploads that were never deleted.
func (f *fakeFileStore) dangling() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	gone := map[string]bool{}
	for _, d := range f.deleted {
		gone[d] = true
	}
	var out []string
	for _, u := range f.uploaded {
		if !gone[u] {
			out = append(out, u)
		}
	}
	return out
}

func newTestVideoResolver(t *testing.T, files llm.FileStore, d Downloader) (*VideoResolver, string) {
	t.Helper()
	dir := t.TempDir()
	return NewVideoResolver(files, d, VideoConfig{
		ScratchDir:   dir,
		PollInterval: time.Millisecond,
		PollTimeout:  200 * time.Millisecond,
	}), dir
}

func assertNoScratchFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ScratchPrefix) {
			t.Errorf("scratch file left behind: %s", e.Name())
		}
	}
}

var videoSource = models.Source{Type: models.SourceYoutube, URL: "https://youtu.be/x", Title: "https://youtu.be/x"}

func TestVideoResolverSuccess(t *testing.T) {
	files := &fakeFileStore{states: []llm.FileState{llm.FileStateProcessing, llm.FileStateActive}}
	r, dir := newTestVideoResolver(t, files, fakeDownloader{body: mp4Header})

	res, err := r.Resolve(context.Background(), 1, videoSource)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.IsReference() || res.MIMEType != "video/mp4" || !strings.HasPrefix(res.URI, "https://provider.test/files/") {
		t.Errorf("res = %+v", res)
	}
	assertNoScratchFiles(t, dir)

	if len(files.dangling()) != 1 {
		t.Fatalf("remote file should live until Release, dangling = %v", files.dangling())
	}
	if err := res.Release(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = res.Release(context.Background())
	if got := files.dangling(); len(got) != 0 {
		t.Errorf("dangling after release: %v", got)
	}
	if len(files.deleted) != 1 {
		t.Errorf("Release should delete once, deleted = %v", files.deleted)
	}
}

func TestVideoResolverUploadFailure(t *testing.T) {
	files := &fakeFileStore{uploadErr: errors.New("quota exceeded")}
	r, dir := newTestVideoResolver(t, files, fakeDownloader{body: mp4Header})

	if _, err := r.Resolve(context.Background(), 0, videoSource); err == nil {
		t.Fatal("expected upload failure")
	}
	assertNoScratchFiles(t, dir)
	if got := files.dangling(); len(got) != 0 {
		t.Errorf("dangling uploads: %v", got)
	}
}

func TestVideoResolverProcessingFailed(t *testing.T) {
	files := &fakeFileStore{states: []llm.FileState{llm.FileStateFailed}}
	r, dir := newTestVideoResolver(t, files, fakeDownloader{body: mp4Header})

	_, err := r.Resolve(context.Background(), 0, videoSource)
	if !errors.Is(err, ErrVideoProcessingFailed) {
		t.Fatalf("err = %v", err)
	}
	assertNoScratchFiles(t, dir)
	if got := files.dangling(); len(got) != 0 {
		t.Errorf("dangling uploads: %v", got)
	}
}

func TestVideoResolverProcessingTimeout(t *testing.T) {
	files := &fakeFileStore{}
	r, _ := newTestVideoResolver(t, files, fakeDownloader{body: mp4Header})

	_, err := r.Resolve(context.Background(), 0, videoSource)
	if !errors.Is(err, ErrVideoProcessingTimeout) {
		t.Fatalf("err = %v", err)
	}
	if got := files.dangling(); len(got) != 0 {
		t.Errorf("dangling uploads: %v", got)
	}
}

func TestVideoResolverRejectsNonVideo(t *testing.T) {
	files := &fakeFileStore{}
	r, dir := newTestVideoResolver(t, files, fakeDownloader{body: []byte("<html>consent page</html>")})

	_, err := r.Resolve(context.Background(), 0, videoSource)
	if !errors.Is(err, ErrNotVideo) {
		t.Fatalf("err = %v", err)
	}
	assertNoScratchFiles(t, dir)
	if len(files.uploaded) != 0 {
		t.Error("nothing should have been uploaded")
	}
}

func TestVideoResolverDownloadFailure(t *testing.T) {
	files := &fakeFileStore{}
	r, dir := newTestVideoResolver(t, files, fakeDownloader{err: errors.New("403")})

	if _, err := r.Resolve(context.Background(), 0, videoSource); err == nil {
		t.Fatal("expected download failure")
	}
	assertNoScratchFiles(t, dir)
}

func TestResolvedReleaseZeroValue(t *testing.T) {
	var r Resolved
	if err := r.Release(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p := Inline("x").Part(); p.IsFile() || p.Text != "x" {
		t.Errorf("part = %+v", p)
	}
	if p := Reference("u", "video/mp4").Part(); !p.IsFile() {
		t.Errorf("part = %+v", p)
	}
}

func TestResolverSetRouting(t *testing.T) {
	text := NewTextResolver(nil, 0)
	pdf := NewPDFResolver(true, nil, "", 0)
	video, _ := newTestVideoResolver(t, &fakeFileStore{}, fakeDownloader{})
	set := NewResolverSet(text, pdf, video)

	cases := map[models.SourceType]Resolver{
		models.SourceArticle: text,
		models.SourceTweet:   text,
		models.SourcePDF:     pdf,
		models.SourceYoutube: video,
		models.SourceVideo:   video,
		"podcast":            text,
	}
	for typ, want := range cases {
		if got := set.For(typ); got != want {
			t.Errorf("For(%s) picked %T", typ, got)
		}
	}
}
