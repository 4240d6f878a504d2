package scam_detector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// Classifier is the part of Detector the function handlers and batch runner use.
type Classifier interface {
	Detect(ctx context.Context, message, strategy string) (*ScamDetectionOutput, error)
	Model() string
}

var (
	loadConfigFn  = func() (*Config, error) { return LoadConfig("") }
	newLoggerFn   = NewLogger
	newDetectorFn = func(cfg *Config, logger *zap.Logger) (Classifier, error) { return NewDetectorFromConfig(cfg, logger) }
	notifySlackFn = SendSlackNotification
	newRequestID  = uuid.NewString
)

// loadLogger reads the config and builds its logger. Failures are logged
// on a default logger since there is no configured one yet.
func loadLogger() (*Config, *zap.Logger, error) {
	cfg, err := loadConfigFn()
	if err == nil {
		logger, lerr := newLoggerFn(cfg.LogLevel)
		if lerr == nil {
			return cfg, logger, nil
		}
		err = lerr
	}

	if fallback, ferr := newLoggerFn(""); ferr == nil {
		fallback.Error("failed to load config", zap.Error(err))
		fallback.Sync()
	} else {
		log.Printf("failed to load config: %v", err)
	}
	return nil, nil, err
}

// ClassifyMessage handles the Cloud Function HTTP request
func ClassifyMessage(w http.ResponseWriter, r *http.Request) {
	// Handle ping/health check endpoint
	if r.Method == http.MethodGet && (r.URL.Path == "/ping" || r.URL.Path == "/health" || r.URL.Path == "/") {
		Ping(w, r)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, logger, err := loadLogger()
	if err != nil {
		http.Error(w, "Detector is not configured", http.StatusInternalServerError)
		return
	}

	requestID := newRequestID()
	logger = logger.With(zap.String("request_id", requestID))
	defer logger.Sync()

	if err := validateBearerToken(r, cfg.BearerToken); err != nil {
		logger.Warn("rejected request", zap.Error(err))
		http.Error(w, "Invalid bearer token", http.StatusUnauthorized)
		return
	}

	detector, err := newDetectorFn(cfg, logger)
	if err != nil {
		logger.Error("failed to initialise detector", zap.Error(err))
		http.Error(w, "Detector is not configured", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		logger.Error("error reading request body", zap.Error(err))
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req ClassifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	output, err := detector.Detect(r.Context(), req.Message, req.Strategy)
	if err != nil {
		status, text := errorResponse(err)
		logger.Error("classification failed", zap.Int("status", status), zap.Error(err))
		http.Error(w, text, status)
		return
	}

	alert := scamAlert{RequestID: requestID, Message: req.Message, Output: output}
	if err := notifySlackFn(r.Context(), cfg.SlackWebhookURL, alert); err != nil {
		logger.Warn("slack notification failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ClassifyResponse{
		RequestID: requestID,
		Model:     detector.Model(),
		Result:    output,
	})
}

// ClassifyEvent handles CloudEvents whose data is a ClassifyRequest. Only
// transient failures are returned so the platform redelivers them.
func ClassifyEvent(ctx context.Context, e event.Event) error {
	cfg, logger, err := loadLogger()
	if err != nil {
		return nil
	}
	logger = logger.With(zap.String("event_id", e.ID()), zap.String("event_type", e.Type()))
	defer logger.Sync()

	var req ClassifyRequest
	if err := e.DataAs(&req); err != nil {
		logger.Error("failed to decode event", zap.Error(err))
		return nil
	}

	detector, err := newDetectorFn(cfg, logger)
	if err != nil {
		logger.Error("failed to initialise detector", zap.Error(err))
		return nil
	}

	output, err := detector.Detect(ctx, req.Message, req.Strategy)
	if err != nil {
		if !isTransient(err) {
			// redelivery cannot fix a bad payload or a rejected answer
			logger.Error("classification failed permanently", zap.Error(err))
			return nil
		}
		logger.Error("classification failed", zap.Error(err))
		return err
	}

	logger.Info("event classified", zap.String("label", string(output.Label)))

	alert := scamAlert{RequestID: e.ID(), Message: req.Message, Output: output}
	if err := notifySlackFn(ctx, cfg.SlackWebhookURL, alert); err != nil {
		logger.Warn("slack notification failed", zap.Error(err))
	}
	return nil
}

// errorResponse maps a Detect error to a status and a caller-safe message.
// Provider bodies and raw model output stay in the logs.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest, "Message is empty"
	case errors.Is(err, ErrUnsupportedStrategy):
		return http.StatusBadRequest, "Unsupported strategy"
	case errors.Is(err, ErrSchemaValidation):
		return http.StatusUnprocessableEntity, "Model returned an invalid verdict"
	case errors.Is(err, ErrMissingAPIKey):
		return http.StatusInternalServerError, "Detector is not configured"
	default:
		return http.StatusBadGateway, "Classification failed"
	}
}
