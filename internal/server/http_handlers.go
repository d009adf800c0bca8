package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"folio/internal/errors"
)

const (
	serviceName        = "resume-builder"
	healthCheckTimeout = 2 * time.Second
)

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Resume Builder API is running"})
}

func (s *Server) helloHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Hello World"})
}

// healthHandler reports liveness; a store that fails to answer a ping degrades it
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": serviceName,
	}

	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			s.Logger.LogError(err, "Health check: store ping failed")
			response["status"] = "degraded"
			response["store"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// statsHandler provides server statistics including rate limiting and AI breaker info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": serviceName,
		"version": s.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           !s.keys.empty(),
			"api_keys":               s.keys.count(),
			"tls_mode":               s.TLSConfig.Mode,
		},
	}

	if s.deps.Store != nil {
		response["store"] = map[string]any{"driver": s.deps.Store.Driver()}
	}

	gateways := make(map[string]any, len(s.deps.Gateways))
	for _, g := range s.deps.Gateways {
		stats := g.Stats()
		gateways[fmt.Sprint(stats["operation"])] = stats
	}
	response["ai"] = gateways

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
	}

	if s.keyRefresh != nil {
		response["key_refresh"] = s.keyRefresh.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// checkCertificateHealth summarizes the serving certificate, or nil without TLS reload
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)

	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	criticalThreshold := 24 * time.Hour
	warningThreshold := 7 * 24 * time.Hour

	certStatus["time_to_expiry"] = timeToExpiry.Round(time.Second).String()

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= criticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= warningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}

	metrics := s.CertificateManager.GetMetrics()
	certStatus["metrics"] = map[string]any{
		"reload_count":         metrics.ReloadCount,
		"reload_success_count": metrics.ReloadSuccessCount,
		"reload_failure_count": metrics.ReloadFailureCount,
		"last_reload_time":     metrics.LastReloadTime,
		"last_reload_success":  metrics.LastReloadSuccess,
		"last_reload_error":    metrics.LastReloadError,
	}
	certStatus["watched_files"] = s.CertificateManager.WatchedFiles()

	return certStatus
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "content-type must be application/json", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to parse JSON: "+err.Error(), err)
	}

	return nil
}

// statusFor maps an error onto an HTTP status.
// Field-level validation is 422; other client faults are 400.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		switch appErr.Code {
		case errors.ErrCodeInvalidRequest, errors.ErrCodeMissingField:
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it in the standard error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	kind, message := "INTERNAL_ERROR", "Internal server error"
	if appErr, ok := errors.AsAppError(err); ok {
		kind, message = appErr.Code, appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "method", r.Method, "path", r.URL.Path, "status", status)
	} else {
		s.Logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
	}

	writeErrorResponse(w, kind, message, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, kind, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure can only be a broken connection
	_ = json.NewEncoder(w).Encode(v)
}
