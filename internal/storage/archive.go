package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lyratng/ai-menu/internal/config"
	"github.com/lyratng/ai-menu/internal/domain"
)

// MenuArchive keeps a JSON copy of every persisted menu in S3-compatible
// object storage. The database stays the source of truth; the archive is a
// read-only export feed for reporting tools.
type MenuArchive struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewMenuArchive creates a new archive client against an S3-compatible
// endpoint.
// Parameters:
//   - cfg: archive configuration including endpoint, credentials, and bucket.
//
// Returns:
//   - *MenuArchive: initialized archive client.
//   - error: non-nil if the AWS config cannot be assembled.
func NewMenuArchive(cfg *config.ArchiveConfig) (*MenuArchive, error) {
	endpoint := normalizeEndpoint(cfg.Endpoint)

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		o.UsePathStyle = true // path-style keeps MinIO-style endpoints working
	})

	return &MenuArchive{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// normalizeEndpoint removes protocol prefix and path from endpoint
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return strings.TrimSuffix(endpoint, "/")
}

// menuKey builds the object key for a menu document.
func menuKey(tenantID, menuID string) string {
	return fmt.Sprintf("menus/%s/%s.json", tenantID, menuID)
}

// EnsureBucket creates the archive bucket if it doesn't exist.
func (a *MenuArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ArchiveMenu uploads the menu as a JSON document keyed by tenant and menu
// id. Overwrites are idempotent since a menu never changes after creation.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - menu: persisted menu record to export.
//
// Returns:
//   - error: non-nil if marshalling or the upload fails.
func (a *MenuArchive) ArchiveMenu(ctx context.Context, menu *domain.Menu) error {
	body, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("failed to marshal menu document: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(menuKey(menu.TenantID, menu.ID)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload menu document: %w", err)
	}
	return nil
}

// FetchMenu downloads an archived menu document.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: owning tenant.
//   - menuID: menu ID.
//
// Returns:
//   - io.ReadCloser: document body; caller closes.
//   - error: non-nil if the download fails.
func (a *MenuArchive) FetchMenu(ctx context.Context, tenantID, menuID string) (io.ReadCloser, error) {
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(menuKey(tenantID, menuID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download menu document: %w", err)
	}
	return result.Body, nil
}

// DocumentURL returns the public URL of an archived menu document. Empty
// when no public URL prefix is configured.
func (a *MenuArchive) DocumentURL(tenantID, menuID string) string {
	if a.publicURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", a.publicURL, menuKey(tenantID, menuID))
}
