package llm

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingAPIKey    = errors.New("model provider API key is not defined")
	ErrFilesUnsupported = errors.New("model provider does not support file uploads")
	ErrEmptyResponse    = errors.New("model returned an empty response")
	ErrUnknownProvider  = errors.New("unknown model provider")
)

// Part is one ordered segment of a multimodal request: inline text or a
// reference to remote content the provider can read.
type Part struct {
	Text     string
	FileURI  string
	MIMEType string
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func FilePart(uri, mimeType string) Part {
	return Part{FileURI: uri, MIMEType: mimeType}
}

func (p Part) IsFile() bool {
	return p.FileURI != ""
}

// Request is a single generation call.
type Request struct {
	Model string
	Parts []Part
	// JSON asks the provider for an application/json response.
	JSON bool
}

// Generator is the external model.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	// ReadsFileURIs reports whether file parts are handed to the model as
	// documents rather than flattened to text.
	ReadsFileURIs() bool
	Name() string
}

type FileState string

const (
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

// File is a provider-side upload.
type File struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// FileStore is the provider's file storage used by the video pipeline.
type FileStore interface {
	Upload(ctx context.Context, path, mimeType, displayName string) (*File, error)
	Get(ctx context.Context, name string) (*File, error)
	Delete(ctx context.Context, name string) error
}

// Unconfigured stands in for a provider whose credentials are missing so the
// process can still start; every call fails with Err.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) Generate(context.Context, Request) (string, error) {
	return "", u.Err
}

func (u Unconfigured) ReadsFileURIs() bool { return false }

func (u Unconfigured) Name() string { return "unconfigured" }

func (u Unconfigured) Upload(context.Context, string, string, string) (*File, error) {
	return nil, u.Err
}

func (u Unconfigured) Get(context.Context, string) (*File, error) {
	return nil, u.Err
}

func (u Unconfigured) Delete(context.Context, string) error {
	return u.Err
}

// flattenParts renders parts as plain text for providers that cannot take
// file references.
func flattenParts(parts []Part) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if p.IsFile() {
			sb.WriteString("Referenced ")
			sb.WriteString(p.MIMEType)
			sb.WriteString(" content (fetch and analyze it if you can): ")
			sb.WriteString(p.FileURI)
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
