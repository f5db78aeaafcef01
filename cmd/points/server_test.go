package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bbernstein/layerjson/internal/config"
	"github.com/bbernstein/layerjson/internal/engine"
	"github.com/bbernstein/layerjson/internal/handler"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/bbernstein/layerjson/internal/viewport"
	"github.com/bbernstein/layerjson/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestHandler(t *testing.T) {
	t.Helper()
	resetService(t)
	pointsHandler = handler.NewPointsHandler(&mockPointStore{points: []models.Point{
		{ID: "pier", Title: "Pier", Loc: [2]float64{10.5, 20.5}},
		{ID: "buoy", Title: "Buoy", Loc: [2]float64{10.2, 20.9}},
		{ID: "far", Title: "Far", Loc: [2]float64{40, -74}},
	}}, 100)
}

func TestLocalServer(t *testing.T) {
	withTestHandler(t)

	tests := []struct {
		name         string
		target       string
		expectedCode int
		wantIDs      []string
	}{
		{
			name:         "bbox query",
			target:       "/search.php?lat1=10.000000&lat2=11.000000&lon1=20.000000&lon2=21.000000",
			expectedCode: http.StatusOK,
			wantIDs:      []string{"pier", "buoy"},
		},
		{
			name:         "alternate path",
			target:       "/points?lat1=10&lat2=11&lon1=20.6&lon2=21",
			expectedCode: http.StatusOK,
			wantIDs:      []string{"buoy"},
		},
		{
			name:         "missing bbox",
			target:       "/search.php?lat1=10",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown path",
			target:       "/graphql",
			expectedCode: http.StatusNotFound,
		},
	}

	srv := newLocalServer("")
	assert.Equal(t, ":8080", srv.Addr)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			srv.Handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.wantIDs == nil {
				return
			}
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

			var points []models.Point
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
			ids := make([]string, 0, len(points))
			for _, p := range points {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestServerConfiguration(t *testing.T) {
	assert.Equal(t, ":3000", newLocalServer("3000").Addr)
	assert.Equal(t, ":8080", newLocalServer("").Addr)
}

// The layer's default URL template talks to the local server as is.
func TestLayerAgainstLocalServer(t *testing.T) {
	withTestHandler(t)

	ts := httptest.NewServer(newLocalServer("").Handler)
	defer ts.Close()

	cfg := config.DefaultLayerConfig()
	cfg.URL = ts.URL + "/" + config.DefaultURL

	layer, err := engine.New(cfg, engine.WithHTTPClient(client.New(client.Options{MaxRetries: 1})))
	require.NoError(t, err)

	m := viewport.NewMap(models.NewBounds(models.NewLatLng(10, 20), models.NewLatLng(11, 21)))
	require.NoError(t, layer.Attach(context.Background(), m))
	layer.Wait()

	titles := make([]string, 0)
	for _, marker := range layer.Layers() {
		titles = append(titles, marker.Title)
	}
	assert.Equal(t, []string{"Pier", "Buoy"}, titles)
	require.NoError(t, layer.Detach())
}
