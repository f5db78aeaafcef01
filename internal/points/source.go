package points

import (
	"context"
	"fmt"

	"github.com/bbernstein/layerjson/internal/config"
	"github.com/bbernstein/layerjson/internal/models"
)

// Source loads the complete point set.
type Source interface {
	Load(ctx context.Context) ([]models.Point, error)
}

// NewSource builds the source selected by cfg with clients for the current
// environment.
func NewSource(ctx context.Context, cfg *config.PointsConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceS3:
		client, err := NewS3Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating S3 client: %w", err)
		}
		return NewS3Source(client, cfg.Bucket, cfg.Key), nil
	case config.SourceDynamo:
		client, err := NewDynamoClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		return NewDynamoSource(client, cfg.Table), nil
	default:
		return nil, fmt.Errorf("unknown point source %q", cfg.Source)
	}
}
