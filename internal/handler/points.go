package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/layerjson/internal/api"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/rs/zerolog/log"
)

// PointsHandler answers bbox queries with the bare JSON array of points
// inside the box, the shape the layer expects from its URL.
type PointsHandler struct {
	store        models.PointStore
	defaultLimit int
}

func NewPointsHandler(store models.PointStore, defaultLimit int) *PointsHandler {
	return &PointsHandler{
		store:        store,
		defaultLimit: defaultLimit,
	}
}

func (h *PointsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	bounds, err := api.ParseBounds(params)
	if err != nil {
		var boundsErr api.InvalidBoundsError
		if errors.As(err, &boundsErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}

	limit := api.ParseLimit(params, h.defaultLimit)

	points, err := h.store.Within(ctx, models.NewQuery(bounds, 6), limit)
	if err != nil {
		log.Error().Err(err).Msg("Error finding points")
		return api.Error("Error finding points", http.StatusInternalServerError)
	}

	log.Debug().
		Str("bounds", bounds.SouthWest.String()+" "+bounds.NorthEast.String()).
		Int("point_count", len(points)).
		Msg("Served points")

	return api.Success(points)
}
