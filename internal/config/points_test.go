package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearPointsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POINTS_SOURCE", "POINTS_BUCKET", "POINTS_KEY", "POINTS_TABLE",
		"POINTS_REFRESH_MINUTES", "POINTS_RESULT_LIMIT",
	} {
		t.Setenv(key, "")
		unsetForTest(t, key)
	}
}

func TestGetPointsConfig(t *testing.T) {
	clearPointsEnv(t)

	cfg := GetPointsConfig()
	assert.Equal(t, SourceS3, cfg.Source)
	assert.Equal(t, "points.json", cfg.Key)
	assert.Equal(t, "layerjson-points", cfg.Table)
	assert.Equal(t, 15*time.Minute, cfg.GetRefreshTTL())
	assert.Equal(t, 500, cfg.ResultLimit)

	t.Setenv("POINTS_SOURCE", "dynamo")
	t.Setenv("POINTS_TABLE", "harbors")
	t.Setenv("POINTS_REFRESH_MINUTES", "5")
	t.Setenv("POINTS_RESULT_LIMIT", "50")

	cfg = GetPointsConfig()
	assert.Equal(t, SourceDynamo, cfg.Source)
	assert.Equal(t, "harbors", cfg.Table)
	assert.Equal(t, 5*time.Minute, cfg.GetRefreshTTL())
	assert.Equal(t, 50, cfg.ResultLimit)
}

func TestPointsConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PointsConfig
		wantErr bool
	}{
		{
			name: "s3 with bucket",
			cfg:  PointsConfig{Source: SourceS3, Bucket: "b", Key: "points.json", RefreshMinutes: 15},
		},
		{
			name:    "s3 without bucket",
			cfg:     PointsConfig{Source: SourceS3, Key: "points.json", RefreshMinutes: 15},
			wantErr: true,
		},
		{
			name: "dynamo with table",
			cfg:  PointsConfig{Source: SourceDynamo, Table: "t", RefreshMinutes: 15},
		},
		{
			name:    "unknown source",
			cfg:     PointsConfig{Source: "postgres", RefreshMinutes: 15},
			wantErr: true,
		},
		{
			name:    "zero refresh",
			cfg:     PointsConfig{Source: SourceDynamo, Table: "t"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
