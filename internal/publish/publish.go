package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/textutil"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads files under a bucket prefix.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// New builds a Publisher from the default AWS credential chain with the
// region, profile and addressing overrides from cfg.
func New(ctx context.Context, cfg config.Publish, logger *slog.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "init", "bucket not configured", nil)
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "init", "load aws config", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: normalizePrefix(prefix),
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// normalizePrefix lowercases each prefix segment into a key-safe token and
// drops empty segments.
func normalizePrefix(prefix string) string {
	var segments []string
	for _, segment := range strings.Split(prefix, "/") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		segments = append(segments, textutil.SanitizeToken(segment))
	}
	return strings.Join(segments, "/")
}

// Key returns the object key for a local file.
func (p *Publisher) Key(localPath string) string {
	name := filepath.Base(localPath)
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Upload puts each file and returns their s3:// URIs in order. It stops at
// the first failure.
func (p *Publisher) Upload(ctx context.Context, paths ...string) ([]string, error) {
	uris := make([]string, 0, len(paths))
	for _, local := range paths {
		if strings.TrimSpace(local) == "" {
			continue
		}
		uri, err := p.put(ctx, local)
		if err != nil {
			return uris, err
		}
		uris = append(uris, uri)
	}
	return uris, nil
}

func (p *Publisher) put(ctx context.Context, local string) (string, error) {
	file, err := os.Open(local)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "publish", "open", local, err)
	}
	defer file.Close()

	key := p.Key(local)
	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct := ContentType(local); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "put object", key, err)
	}
	uri := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	logging.WithContext(ctx, p.logger).Info("deliverable published",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.String("object_uri", uri),
	)
	return uri, nil
}

// ContentType maps deliverable extensions to MIME types.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".srt":
		return "application/x-subrip"
	default:
		return ""
	}
}
