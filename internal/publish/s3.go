// Package publish uploads the rendered menu to object storage so static
// sites and other screens can read it without reaching the spreadsheet.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"menuboard/internal/config"
	"menuboard/internal/logging"
	"menuboard/internal/pipeline"
)

const (
	contentJSON = "application/json; charset=utf-8"
	contentXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ObjectPutter is the part of *s3.Client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	log    *zap.Logger
}

// NewS3Publisher builds a client from the default AWS credential chain.
func NewS3Publisher(ctx context.Context, cfg config.Config, log *zap.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, errors.New("S3_BUCKET is required to publish")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewPublisher(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix, log), nil
}

func NewPublisher(client ObjectPutter, bucket, prefix string, log *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    logging.OrNop(log),
	}
}

// Publish uploads menu.json and menu.xlsx and returns the object keys.
func (p *Publisher) Publish(ctx context.Context, feed pipeline.Feed) ([]string, error) {
	menuJSON, err := pipeline.MenuJSON(feed)
	if err != nil {
		return nil, fmt.Errorf("render menu json: %w", err)
	}
	menuXLSX, err := pipeline.MenuXLSX(feed)
	if err != nil {
		return nil, fmt.Errorf("render menu xlsx: %w", err)
	}

	objects := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"menu.json", menuJSON, contentJSON},
		{"menu.xlsx", menuXLSX, contentXLSX},
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		key := p.key(obj.name)
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(p.bucket),
			Key:          aws.String(key),
			Body:         bytes.NewReader(obj.body),
			ContentType:  aws.String(obj.contentType),
			CacheControl: aws.String("no-cache"),
		})
		if err != nil {
			return keys, fmt.Errorf("upload s3://%s/%s: %w", p.bucket, key, err)
		}
		p.log.Info("published", zap.String("bucket", p.bucket), zap.String("key", key), zap.Int("bytes", len(obj.body)))
		keys = append(keys, key)
	}
	return keys, nil
}

func (p *Publisher) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}
