package config

import (
	"fmt"
	"time"
)

const (
	SourceS3     = "s3"
	SourceDynamo = "dynamo"

	defaultPointsKey      = "points.json"
	defaultPointsTable    = "layerjson-points"
	defaultRefreshMinutes = 15
	defaultResultLimit    = 500
)

// PointsConfig configures the point service behind the layer URL.
type PointsConfig struct {
	Source         string `validate:"oneof=s3 dynamo"`
	Bucket         string `validate:"required_if=Source s3"`
	Key            string `validate:"required_if=Source s3"`
	Table          string `validate:"required_if=Source dynamo"`
	RefreshMinutes int    `validate:"gte=1"`
	ResultLimit    int    `validate:"gte=0"`
}

// GetPointsConfig returns the point service configuration from environment variables or defaults
func GetPointsConfig() *PointsConfig {
	return &PointsConfig{
		Source:         getEnvOrDefault("POINTS_SOURCE", SourceS3),
		Bucket:         getEnvOrDefault("POINTS_BUCKET", ""),
		Key:            getEnvOrDefault("POINTS_KEY", defaultPointsKey),
		Table:          getEnvOrDefault("POINTS_TABLE", defaultPointsTable),
		RefreshMinutes: getEnvInt("POINTS_REFRESH_MINUTES", defaultRefreshMinutes),
		ResultLimit:    getEnvInt("POINTS_RESULT_LIMIT", defaultResultLimit),
	}
}

func (c *PointsConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid points config: %w", err)
	}
	return nil
}

func (c *PointsConfig) GetRefreshTTL() time.Duration {
	return time.Duration(c.RefreshMinutes) * time.Minute
}
