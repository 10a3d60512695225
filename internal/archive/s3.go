// Package archive mirrors finished reports to S3-compatible object
// storage. Archival is best-effort from the engine's point of view: a
// failed upload is logged by the caller, never surfaced to the request.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"repohealth/internal/report"
	"repohealth/internal/util/jsonutil"
)

// PresignTTL is how long a shared archive link stays valid.
const PresignTTL = time.Hour

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether the config names an endpoint at all. An empty
// config disables archiving without error.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

type S3Archive struct {
	client *minio.Client
	bucket string
	region string

	initOnce sync.Once
	initErr  error
}

// NewS3 validates the config and builds the client. The bucket is created
// lazily on first use.
func NewS3(cfg S3Config) (*S3Archive, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Archive{client: client, bucket: bucket, region: region}, nil
}

func (a *S3Archive) ensureBucket(ctx context.Context) error {
	if a == nil || a.client == nil {
		return fmt.Errorf("archive is nil")
	}
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

// Put uploads one report as pretty-printed JSON and returns its object key.
func (a *S3Archive) Put(ctx context.Context, rep report.Report) (string, error) {
	if a == nil {
		return "", fmt.Errorf("archive is nil")
	}
	if strings.TrimSpace(rep.ID) == "" || strings.TrimSpace(rep.Repository) == "" {
		return "", fmt.Errorf("report needs an id and a repository")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	body, err := jsonutil.MarshalNoEscapeIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	key := ObjectKey(rep.Repository, rep.ID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// URL returns a presigned link to an archived report, valid for PresignTTL.
func (a *S3Archive) URL(ctx context.Context, repo, reportID string) (string, error) {
	if a == nil || a.client == nil {
		return "", fmt.Errorf("archive is nil")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	u, err := a.client.PresignedGetObject(ctx, a.bucket, ObjectKey(repo, reportID), PresignTTL, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// ObjectKey is <repository>/<reportID>.json with any stray slashes trimmed.
func ObjectKey(repo, reportID string) string {
	repo = strings.Trim(strings.TrimSpace(repo), "/")
	return repo + "/" + strings.TrimSpace(reportID) + ".json"
}
