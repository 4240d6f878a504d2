package scam_detector

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
)

// Ping handles health check requests
func Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]string{
		"status":  "ok",
		"message": "Service is running",
	}
	json.NewEncoder(w).Encode(response)
}

func init() {
	// Register the Cloud Function handlers with the Functions Framework.
	// The Cloud Functions runtime or any importing main package is
	// responsible for starting the HTTP server.
	funcframework.RegisterHTTPFunction("/", ClassifyMessage)
	if err := funcframework.RegisterCloudEventFunctionContext(context.Background(), "/events", ClassifyEvent); err != nil {
		log.Printf("failed to register ClassifyEvent: %v", err)
	}
}

// validateBearerToken checks the Authorization header when a token is configured.
func validateBearerToken(r *http.Request, token string) error {
	if token == "" {
		return nil
	}

	expected := fmt.Sprintf("Bearer %s", token)

	provided := r.Header.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		return fmt.Errorf("invalid or missing bearer token")
	}

	return nil
}
