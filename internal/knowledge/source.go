package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"consultant-chat/internal/integrations/paramstore"
)

const (
	s3Scheme  = "s3://"
	ssmScheme = "ssm:"

	maxDocumentBytes = 1 << 20
)

// Kind identifies where a knowledge document lives.
type Kind int

const (
	KindFile Kind = iota
	KindS3
	KindSSM
)

// ParseLocation classifies a location string: "s3://bucket/key",
// "ssm:/parameter/name", or anything else as a file path.
func ParseLocation(loc string) (Kind, string) {
	loc = strings.TrimSpace(loc)
	switch {
	case strings.HasPrefix(loc, s3Scheme):
		return KindS3, loc
	case strings.HasPrefix(loc, ssmScheme):
		return KindSSM, strings.TrimPrefix(loc, ssmScheme)
	default:
		return KindFile, loc
	}
}

// DefaultPath returns the document path relative to the deployment root.
// root is usually LAMBDA_TASK_ROOT and may be empty.
func DefaultPath(root string) string {
	if strings.TrimSpace(root) == "" {
		return DefaultFile
	}
	return filepath.Join(root, DefaultFile)
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read file: %w", err)
	}
	return raw, nil
}

func (s FileSource) String() string {
	return s.Path
}

// s3API is the minimal S3 interface required by S3Source.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the document from an S3 object.
type S3Source struct {
	api    s3API
	bucket string
	key    string
}

// NewS3Source parses an s3://bucket/key URI.
func NewS3Source(api s3API, uri string) (*S3Source, error) {
	if api == nil {
		return nil, errors.New("knowledge: s3 api must not be nil")
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), s3Scheme)
	if !ok {
		return nil, fmt.Errorf("knowledge: %q is not an s3 uri", uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("knowledge: s3 uri %q needs a bucket and a key", uri)
	}
	return &S3Source{api: api, bucket: bucket, key: key}, nil
}

func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge: get object %s: %w", s, err)
	}
	if out == nil || out.Body == nil {
		return nil, fmt.Errorf("knowledge: object %s has no body", s)
	}
	defer func() { _ = out.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("knowledge: read object %s: %w", s, err)
	}
	return raw, nil
}

func (s *S3Source) String() string {
	return s3Scheme + s.bucket + "/" + s.key
}

// ParamSource reads the document from an SSM parameter.
type ParamSource struct {
	getter paramstore.Getter
	name   string
}

func NewParamSource(g paramstore.Getter, name string) (*ParamSource, error) {
	if g == nil {
		return nil, errors.New("knowledge: parameter getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("knowledge: parameter name must not be empty")
	}
	return &ParamSource{getter: g, name: name}, nil
}

func (s *ParamSource) Fetch(ctx context.Context) ([]byte, error) {
	v, err := s.getter.GetParameter(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	return []byte(v), nil
}

func (s *ParamSource) String() string {
	return ssmScheme + s.name
}
