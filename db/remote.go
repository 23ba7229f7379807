package db

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// RemoteOptions carries credentials for S3 dump targets. The zero value
// falls back to the ambient AWS configuration.
type RemoteOptions struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
}

// ExportTo dumps the store to a URL. Supported schemes are s3://, file://
// and plain local paths; http(s) sources are read-only.
func (engine *Engine) ExportTo(ctx context.Context, url string, options RemoteOptions) error {
	w, err := openRemoteWriter(ctx, url, options)
	if err != nil {
		return err
	}

	if err := engine.Export(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ImportFrom executes a SQL script fetched from a URL. Supported schemes
// are s3://, http://, https://, file:// and plain local paths. Returns the
// number of statements executed.
func (engine *Engine) ImportFrom(ctx context.Context, url string, options RemoteOptions) (int, error) {
	r, err := OpenRemoteReader(ctx, url, options)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	return engine.Import(r)
}

// OpenRemoteReader opens a SQL script for reading. Supported schemes are
// s3://, http://, https://, file:// and plain local paths.
func OpenRemoteReader(ctx context.Context, url string, options RemoteOptions) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(url, "s3://"):
		return openS3Reader(ctx, url, options)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return openHTTPReader(ctx, url)
	case strings.HasPrefix(url, "file://"):
		return os.Open(strings.TrimPrefix(url, "file://"))
	default:
		return os.Open(url)
	}
}

func openRemoteWriter(ctx context.Context, url string, options RemoteOptions) (io.WriteCloser, error) {
	switch {
	case strings.HasPrefix(url, "s3://"):
		return openS3Writer(ctx, url, options)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return nil, fmt.Errorf("cannot write to %s: http(s) targets are read-only", url)
	case strings.HasPrefix(url, "file://"):
		return os.Create(strings.TrimPrefix(url, "file://"))
	default:
		return os.Create(url)
	}
}

func openHTTPReader(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	return resp.Body, nil
}

func splitS3URL(url string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(url, "s3://")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URL %s: expected s3://bucket/key", url)
	}
	return bucket, key, nil
}

func newS3Client(ctx context.Context, options RemoteOptions) (*s3.Client, error) {
	var loadOptions []func(*config.LoadOptions) error
	if options.Region != "" {
		loadOptions = append(loadOptions, config.WithRegion(options.Region))
	}
	if options.AccessKey != "" && options.SecretKey != "" {
		provider := credentials.NewStaticCredentialsProvider(options.AccessKey, options.SecretKey, "")
		loadOptions = append(loadOptions, config.WithCredentialsProvider(provider))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOptions []func(*s3.Options)
	if options.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(options.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(cfg, clientOptions...), nil
}

func openS3Reader(ctx context.Context, url string, options RemoteOptions) (io.ReadCloser, error) {
	bucket, key, err := splitS3URL(url)
	if err != nil {
		return nil, err
	}

	client, err := newS3Client(ctx, options)
	if err != nil {
		return nil, err
	}

	object, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	return object.Body, nil
}

// s3Writer buffers the dump in memory and uploads it as one object on
// Close.
type s3Writer struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	key    string
	buffer bytes.Buffer
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.buffer.Write(p)
}

func (w *s3Writer) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

func openS3Writer(ctx context.Context, url string, options RemoteOptions) (io.WriteCloser, error) {
	bucket, key, err := splitS3URL(url)
	if err != nil {
		return nil, err
	}

	client, err := newS3Client(ctx, options)
	if err != nil {
		return nil, err
	}

	return &s3Writer{ctx: ctx, client: client, bucket: bucket, key: key}, nil
}
