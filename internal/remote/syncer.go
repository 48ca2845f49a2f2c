// Package remote mirrors .rng inputs from an S3-compatible bucket into the
// local data directory before a scan. The solver pipeline drops its range
// exports into object storage; this keeps the local folder current without
// manual copying.
package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Config holds bucket connection settings. Endpoint is optional and allows
// S3-compatible providers (Cloudflare R2, MinIO) alongside AWS itself.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether enough configuration is present to sync.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Syncer downloads new or changed .rng objects into a local directory.
type Syncer struct {
	client     *s3.Client
	downloader *manager.Downloader
	bucket     string
	prefix     string
	destDir    string
	log        zerolog.Logger
}

// NewSyncer creates a syncer for the configured bucket.
func NewSyncer(ctx context.Context, cfg Config, destDir string, log zerolog.Logger) (*Syncer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("remote sync is not configured (bucket is empty)")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &Syncer{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		destDir:    destDir,
		log:        log.With().Str("component", "remote_sync").Logger(),
	}, nil
}

// Sync lists remote .rng objects under the prefix and downloads any that
// are missing locally or differ in size. Returns the number downloaded.
// A failed download is logged and skipped; the local copy of everything
// else still lands.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if err := os.MkdirAll(s.destDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	downloaded := 0
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return downloaded, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".rng") {
				continue
			}

			local := filepath.Join(s.destDir, filepath.Base(key))
			if info, err := os.Stat(local); err == nil && info.Size() == aws.ToInt64(obj.Size) {
				continue // already current
			}

			if err := s.download(ctx, key, local); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("Failed to download range file")
				continue
			}
			downloaded++
		}
	}

	s.log.Info().Int("downloaded", downloaded).Str("bucket", s.bucket).Msg("Remote sync completed")
	return downloaded, nil
}

// download fetches one object via temp file and rename.
func (s *Syncer) download(ctx context.Context, key, local string) error {
	tmp, err := os.CreateTemp(s.destDir, ".sync-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = s.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to download %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, local); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", local, err)
	}
	return nil
}
