package points

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/rs/zerolog/log"
)

// DynamoSource scans every point item of a table.
type DynamoSource struct {
	client dynamodb.ScanAPIClient
	table  string
}

func NewDynamoSource(client dynamodb.ScanAPIClient, table string) *DynamoSource {
	return &DynamoSource{
		client: client,
		table:  table,
	}
}

func (s *DynamoSource) Load(ctx context.Context) ([]models.Point, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	var points []models.Point
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning points table: %w", err)
		}
		pages++

		var batch []models.Point
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshaling point items: %w", err)
		}
		points = append(points, batch...)
	}

	log.Debug().
		Str("table", s.table).
		Int("pages", pages).
		Int("point_count", len(points)).
		Msg("Loaded points from DynamoDB")

	return points, nil
}
