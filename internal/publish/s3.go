package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader publishes finished episodes to an S3 bucket and returns a
// shareable URL.
type Uploader struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

// NewUploader builds an Uploader from ambient AWS credentials.
func NewUploader(ctx context.Context, bucket, region, cdnBaseURL string) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("publish bucket not configured")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Uploader{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		cdnBaseURL: strings.TrimSuffix(cdnBaseURL, "/"),
	}, nil
}

// Upload stores the file under episodes/<date>/<basename> and returns its
// public URL.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join("episodes", time.Now().UTC().Format("2006-01-02"), filepath.Base(localPath))

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeFor(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3://%s/%s: %w", u.bucket, key, err)
	}

	if u.cdnBaseURL != "" {
		return u.cdnBaseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key), nil
}

func contentTypeFor(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
