package backup

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"time"

	"folio/app/config"
	"folio/app/repositories"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// Sink stores snapshots somewhere durable.
type Sink interface {
	Name() string
	Write(ctx context.Context, data []byte) error
}

// FileSink replaces a local file with each snapshot.
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Name() string { return "file:" + s.Path }

func (s *FileSink) Write(ctx context.Context, data []byte) error {
	if err := repositories.WriteFileAtomic(s.Path, data, 0644); err != nil {
		return errors.Wrapf(err, "write backup %s", s.Path)
	}
	return nil
}

// S3Sink uploads each snapshot as a new timestamped object.
type S3Sink struct {
	client s3iface.S3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Sink uses client to write objects under bucket/prefix.
func NewS3Sink(client s3iface.S3API, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// NewS3Client builds an S3 client from cfg. Credentials come from the
// standard AWS environment and shared config.
func NewS3Client(cfg *config.Config) (*s3.S3, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if strings.HasPrefix(cfg.AWSEndpoint, "http://") {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}
	return s3.New(sess), nil
}

func (s *S3Sink) Name() string { return "s3://" + s.bucket + "/" + s.prefix }

// Key names the object a snapshot taken at t is stored under.
func (s *S3Sink) Key(t time.Time) string {
	return path.Join(s.prefix, "posts-"+t.UTC().Format("20060102T150405Z")+".json")
}

func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	key := s.Key(s.now())
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload backup to s3://%s/%s", s.bucket, key)
	}
	return nil
}

// Fetch downloads the object at key.
func (s *S3Sink) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download s3://%s/%s", s.bucket, key)
	}
	return out.Body, nil
}

// ParseS3URL splits "s3://bucket/key" into its parts.
func ParseS3URL(raw string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
