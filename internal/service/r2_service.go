package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/repurpose-api/configs"
	"github.com/maheshrc27/repurpose-api/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
)

// R2Service stores session exports in Cloudflare R2.
type R2Service struct {
	config cfg.R2

	once   sync.Once
	client *s3.Client
	err    error
}

func NewR2Service(r2 cfg.R2) *R2Service {
	return &R2Service{config: r2}
}

func (r *R2Service) R2Client(ctx context.Context) (*s3.Client, error) {
	r.once.Do(func() {
		awsCfg, err := config.LoadDefaultConfig(ctx,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.AccessKey, r.config.SecretKey, "")),
			config.WithRegion("auto"),
		)
		if err != nil {
			r.err = fmt.Errorf("failed to load r2 config: %w", err)
			return
		}

		endpoint := r.config.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.AccountID)
		}
		r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	})
	return r.client, r.err
}

// UploadToR2 puts body under key in the configured bucket.
func (r *R2Service) UploadToR2(ctx context.Context, key string, body []byte, contentType string) error {
	client, err := r.R2Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("r2 upload failed")
		return err
	}
	return nil
}

// Export uploads the session as JSON and returns the object's public URL.
func (r *R2Service) Export(ctx context.Context, session *models.Session) (string, error) {
	body, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("sessions/%d/%s.json", session.ID, id)
	if err := r.UploadToR2(ctx, key, body, "application/json"); err != nil {
		return "", err
	}
	return r.publicURL(key), nil
}

func (r *R2Service) publicURL(key string) string {
	if r.config.PublicURL == "" {
		return key
	}
	return strings.TrimSuffix(r.config.PublicURL, "/") + "/" + key
}
