package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	pdfMIMEType = "application/pdf"
	maxPDFBytes = 50 << 20
)

// PDFResolver hands the document URL to providers that read documents
// natively. For the others it extracts the text locally.
type PDFResolver struct {
	byURI      bool
	client     *http.Client
	scratchDir string
	maxChars   int
}

func NewPDFResolver(byURI bool, client *http.Client, scratchDir string, maxChars int) *PDFResolver {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &PDFResolver{byURI: byURI, client: client, scratchDir: scratchDir, maxChars: maxChars}
}

func (r *PDFResolver) Resolve(ctx context.Context, index int, src models.Source) (Resolved, error) {
	if r.byURI {
		return Reference(src.URL, pdfMIMEType), nil
	}
	text, err := r.extract(ctx, src.URL)
	if err != nil {
		log.Warn().Err(err).Int("source_index", index).Str("url", src.URL).Msg("pdf text extraction failed, using placeholder")
		return Inline(Placeholder(src, err)), nil
	}
	return Inline(fmt.Sprintf("Text extracted from the PDF at %s:\n\n%s", src.URL, text)), nil
}

func (r *PDFResolver) extract(ctx context.Context, url string) (string, error) {
	resp, err := get(ctx, r.client, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(r.scratchDir, ScratchPrefix+"pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, io.LimitReader(resp.Body, maxPDFBytes))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to download pdf: %w", err)
	}
	return ExtractPDFText(tmp.Name(), r.maxChars)
}

// ExtractPDFText reads the plain text of a local PDF.
func ExtractPDFText(path string, maxChars int) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	text := Truncate(strings.Join(strings.Fields(builder.String()), " "), maxChars)
	if text == "" {
		return "", errNoReadableText
	}
	return text, nil
}
