package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPointStore implements models.PointStore for testing
type mockPointStore struct {
	withinFn func(ctx context.Context, query models.Query, limit int) ([]models.Point, error)
}

func (m *mockPointStore) Within(ctx context.Context, query models.Query, limit int) ([]models.Point, error) {
	if m.withinFn != nil {
		return m.withinFn(ctx, query, limit)
	}
	return []models.Point{}, nil
}

func bboxRequest(extra map[string]string) events.APIGatewayProxyRequest {
	params := map[string]string{
		"lat1": "47.000000",
		"lat2": "48.000000",
		"lon1": "-123.000000",
		"lon2": "-122.000000",
	}
	for k, v := range extra {
		params[k] = v
	}
	return events.APIGatewayProxyRequest{QueryStringParameters: params}
}

func TestPointsHandler_HandleRequest(t *testing.T) {
	tests := []struct {
		name           string
		request        events.APIGatewayProxyRequest
		store          *mockPointStore
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "points inside bbox",
			request: bboxRequest(nil),
			store: &mockPointStore{
				withinFn: func(ctx context.Context, query models.Query, limit int) ([]models.Point, error) {
					return []models.Point{{ID: "a", Title: "Pier", Loc: [2]float64{47.6, -122.3}}}, nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"id":"a","title":"Pier","loc":[47.6,-122.3]}]`,
		},
		{
			name:           "no points",
			request:        bboxRequest(nil),
			store:          &mockPointStore{},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "missing bbox",
			request:        events.APIGatewayProxyRequest{QueryStringParameters: map[string]string{"lat1": "47"}},
			store:          &mockPointStore{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "store error",
			request: bboxRequest(nil),
			store: &mockPointStore{
				withinFn: func(ctx context.Context, query models.Query, limit int) ([]models.Point, error) {
					return nil, errors.New("table unavailable")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPointsHandler(tt.store, 500)

			response, err := handler.HandleRequest(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, response.StatusCode)

			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, response.Body)
			}
			if tt.expectedStatus != http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
				assert.Equal(t, "error", body["responseType"])
			}
		})
	}
}

func TestPointsHandlerPassesQueryAndLimit(t *testing.T) {
	var gotQuery models.Query
	var gotLimit int
	store := &mockPointStore{
		withinFn: func(ctx context.Context, query models.Query, limit int) ([]models.Point, error) {
			gotQuery, gotLimit = query, limit
			return []models.Point{}, nil
		},
	}

	handler := NewPointsHandler(store, 500)

	_, err := handler.HandleRequest(context.Background(), bboxRequest(map[string]string{"limit": "25"}))
	require.NoError(t, err)

	assert.Equal(t, 25, gotLimit)
	assert.Equal(t, 47.0, gotQuery.MinLat)
	assert.Equal(t, 48.0, gotQuery.MaxLat)
	assert.Equal(t, -123.0, gotQuery.MinLon)
	assert.Equal(t, -122.0, gotQuery.MaxLon)

	_, err = handler.HandleRequest(context.Background(), bboxRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, 500, gotLimit)
}
