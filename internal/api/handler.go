package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/layerjson/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

var defaultHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

func headers() map[string]string {
	h := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		h[k] = v
	}
	return h
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}

// Bbox parameter names, as produced by the layer's default URL template
const (
	ParamLat1 = "lat1"
	ParamLat2 = "lat2"
	ParamLon1 = "lon1"
	ParamLon2 = "lon2"
)

// ParseBounds reads the bbox from lat1, lat2, lon1 and lon2. Corners may be
// given in either order.
func ParseBounds(params map[string]string) (models.Bounds, error) {
	values := make(map[string]float64, 4)
	for _, name := range []string{ParamLat1, ParamLat2, ParamLon1, ParamLon2} {
		raw, ok := params[name]
		if !ok || raw == "" {
			return models.Bounds{}, InvalidBoundsError{Param: name, Reason: "missing"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return models.Bounds{}, InvalidBoundsError{Param: name, Reason: "not a number"}
		}
		values[name] = v
	}

	for _, name := range []string{ParamLat1, ParamLat2} {
		if values[name] < -90 || values[name] > 90 {
			return models.Bounds{}, InvalidBoundsError{Param: name, Reason: "out of range"}
		}
	}
	for _, name := range []string{ParamLon1, ParamLon2} {
		if values[name] < -180 || values[name] > 180 {
			return models.Bounds{}, InvalidBoundsError{Param: name, Reason: "out of range"}
		}
	}

	return models.NewBounds(
		models.NewLatLng(min(values[ParamLat1], values[ParamLat2]), min(values[ParamLon1], values[ParamLon2])),
		models.NewLatLng(max(values[ParamLat1], values[ParamLat2]), max(values[ParamLon1], values[ParamLon2])),
	), nil
}

// ParseLimit returns the limit parameter, or def when absent or invalid.
func ParseLimit(params map[string]string, def int) int {
	if raw, ok := params["limit"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

type InvalidBoundsError struct {
	Param  string
	Reason string
}

func (e InvalidBoundsError) Error() string {
	return fmt.Sprintf("Invalid bounds: %s %s", e.Param, e.Reason)
}
