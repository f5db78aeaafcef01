package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/rs/zerolog/log"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the point set from a single JSON object. The object is
// either a bare array of points or {"points": [...]}.
type S3Source struct {
	client S3Client
	bucket string
	key    string
}

func NewS3Source(client S3Client, bucket, key string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

type pointsDocument struct {
	Points      []models.Point `json:"points"`
	LastUpdated int64          `json:"lastUpdated,omitempty"`
}

// Load returns no points, without error, when the object does not exist.
func (s *S3Source) Load(ctx context.Context) ([]models.Point, error) {
	if s.bucket == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			log.Warn().Str("bucket", s.bucket).Str("key", s.key).Msg("Point object not found")
			return nil, nil
		}
		return nil, fmt.Errorf("getting points from S3: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading points object: %w", err)
	}

	points, err := decodePoints(data)
	if err != nil {
		return nil, fmt.Errorf("decoding points object: %w", err)
	}

	log.Debug().Int("point_count", len(points)).Str("key", s.key).Msg("Loaded points from S3")
	return points, nil
}

func decodePoints(data []byte) ([]models.Point, error) {
	var points []models.Point
	if err := json.Unmarshal(data, &points); err == nil {
		return points, nil
	}

	var doc pointsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Points, nil
}
