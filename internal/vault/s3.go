package vault

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bds-go/internal/config"
	"bds-go/internal/estate"
)

// S3Vault stores snapshot pairs in an S3 bucket under
// <prefix>/snapshots/<name>. Uploads go through the transfer manager so
// large image archives are sent in parts without buffering in memory.
type S3Vault struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

var _ estate.Vault = (*S3Vault)(nil)

// NewS3Vault creates an S3 vault from configuration. Credentials come from
// the config file when set, otherwise from the default AWS credential chain.
func NewS3Vault(cfg config.VaultConfig) (*S3Vault, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Vault{
		name:     cfg.Name,
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// key builds the object key for a snapshot name.
func (v *S3Vault) key(name string) string {
	return path.Join(v.prefix, "snapshots", name)
}

// PutSnapshot uploads a snapshot, overwriting any previous object with the
// same name.
func (v *S3Vault) PutSnapshot(name string, r io.Reader, size int64) error {
	_, err := v.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot %s: %w", name, err)
	}
	return nil
}

// GetSnapshot downloads a snapshot by name and writes it to w.
func (v *S3Vault) GetSnapshot(name string, w io.Writer) error {
	out, err := v.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.key(name)),
	})
	if err != nil {
		return fmt.Errorf("snapshot not found: %s: %w", name, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	return nil
}

// ListSnapshots returns the names of all stored snapshots.
func (v *S3Vault) ListSnapshots() ([]string, error) {
	prefix := v.key("") + "/"
	paginator := s3.NewListObjectsV2Paginator(v.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(v.bucket),
		Prefix: aws.String(prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("listing snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	return names, nil
}

// ValidateSetup verifies that the bucket is reachable with the configured
// credentials.
func (v *S3Vault) ValidateSetup() error {
	_, err := v.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(v.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket not accessible: %s: %w", v.bucket, err)
	}
	return nil
}
