package infra_s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const maxPosterBytes = 5 << 20

type ObjectAPI interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Posters mirrors TMDB poster images into a bucket and hands out presigned
// links to them. Until a poster is mirrored, links point at TMDB directly.
type Posters struct {
	client  ObjectAPI
	presign PresignAPI
	http    *http.Client
	logger  *slog.Logger

	bucket     string
	prefix     string
	imageBase  string
	presignTTL time.Duration
}

func New(
	client *s3.Client,
	bucket string,
	prefix string,
	imageBase string,
	presignTTL time.Duration,
) *Posters {
	return NewWithAPI(client, s3.NewPresignClient(client), bucket, prefix, imageBase, presignTTL)
}

func NewWithAPI(
	client ObjectAPI,
	presign PresignAPI,
	bucket string,
	prefix string,
	imageBase string,
	presignTTL time.Duration,
) *Posters {
	return &Posters{
		client:     client,
		presign:    presign,
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
		bucket:     bucket,
		prefix:     prefix,
		imageBase:  strings.TrimRight(imageBase, "/"),
		presignTTL: presignTTL,
	}
}

// CheckBucket reports whether the bucket is reachable with the configured
// credentials.
func (p *Posters) CheckBucket(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %s: %w", p.bucket, err)
	}
	return nil
}

// Mirror copies the movie's TMDB poster into the bucket.
func (p *Posters) Mirror(ctx context.Context, m model.Movie) error {
	if m.PosterPath == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.tmdbURL(m.PosterPath), nil)
	if err != nil {
		return err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch poster: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch poster: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes))
	if err != nil {
		return fmt.Errorf("read poster: %w", err)
	}

	key := p.buildKey(m)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if _, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	}); err != nil {
		return fmt.Errorf("failed to save poster to S3: %w", err)
	}

	p.logger.Info("poster mirrored", slog.Int64("tmdb_id", m.TMDBID), slog.String("key", key))
	return nil
}

// URL returns a presigned link to the mirrored poster, or the TMDB link when
// the poster is not mirrored (yet).
func (p *Posters) URL(ctx context.Context, m model.Movie) string {
	if m.PosterPath == "" {
		return ""
	}
	fallback := p.tmdbURL(m.PosterPath)

	key := p.buildKey(m)
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if !isNotFound(err) {
			p.logger.Warn("poster lookup failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return fallback
	}

	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.presignTTL))
	if err != nil {
		p.logger.Warn("poster presign failed", slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	return req.URL
}

func (p *Posters) tmdbURL(posterPath string) string {
	return p.imageBase + "/" + strings.TrimLeft(posterPath, "/")
}

// buildKey names the object after the tmdb id so every room shares one copy.
func (p *Posters) buildKey(m model.Movie) string {
	ext := filepath.Ext(m.PosterPath)
	if ext == "" {
		ext = ".jpg"
	}
	return path.Join(p.prefix, strconv.FormatInt(m.TMDBID, 10)+ext)
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey")
}
