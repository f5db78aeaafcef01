package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

const defaultPort = "8080"

// lambdaHTTPHandler serves the Lambda handler over plain HTTP for local
// development. Only the first value of each query parameter is passed on.
func lambdaHTTPHandler(fn func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(r.URL.Query()))
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}

		resp, err := fn(r.Context(), events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			QueryStringParameters: params,
		})
		if err != nil {
			log.Error().Err(err).Msg("Handler error")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write([]byte(resp.Body)); err != nil {
			log.Error().Err(err).Msg("Error writing response")
		}
	})
}

func newLocalServer(port string) *http.Server {
	if port == "" {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/search.php", lambdaHTTPHandler(handleRequest))
	mux.Handle("/points", lambdaHTTPHandler(handleRequest))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serveLocal runs the local server until ctx is done.
func serveLocal(ctx context.Context, port string) error {
	srv := newLocalServer(port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("Serving points locally")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
