// Package media stores issue photos in an S3-compatible object store.
package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Uploader struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

type Options struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
	UseSSL     bool
}

func NewUploader(opts Options) (*Uploader, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media: connect object storage: %w", err)
	}

	publicBase := opts.PublicBase
	if publicBase == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s", scheme, opts.Endpoint)
	}

	return &Uploader{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload stores the photo under a random object key and returns the key.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := uuid.NewString() + extensionFor(contentType)

	_, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return key, nil
}

// PublicURL returns the browser-reachable URL for an uploaded object.
func (u *Uploader) PublicURL(ref string) string {
	return fmt.Sprintf("%s/%s/%s", u.publicBase, u.bucket, ref)
}

// Remove deletes an uploaded object. Used to clean up after a failed
// submission so no orphaned media is left behind.
func (u *Uploader) Remove(ctx context.Context, ref string) error {
	return u.client.RemoveObject(ctx, u.bucket, ref, minio.RemoveObjectOptions{})
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
