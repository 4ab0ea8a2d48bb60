package handler

import (
	"errors"
	"net/http"

	"tipmap-service/internal/middleware"
	"tipmap-service/internal/service"
	"tipmap-service/pkg/logger"
	"tipmap-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SubmitReport validates and persists one tipping-practice report, creating
// or reusing its business record.
func SubmitReport(c echo.Context) error {
	log := logger.FromContext(c)

	// Parse request
	var sub service.Submission
	if err := c.Bind(&sub); err != nil {
		log.Error("Failed to parse report submission", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":             "invalid_request",
			"error_description": "Could not parse request body",
		})
	}

	// The user id comes from the session, never from the request body.
	sub.UserID = middleware.UserIDFromContext(c)

	outcome, err := submissions.Submit(c.Request().Context(), sub)
	prometheus.RecordSubmissionOutcome(string(outcome.State))
	if err != nil {
		return submissionError(c, outcome, err)
	}

	if prometheus.ReportSubmissionCounter != nil {
		prometheus.ReportSubmissionCounter.WithLabelValues(string(sub.TipPractice)).Inc()
	}
	if outcome.BusinessCreated {
		if prometheus.BusinessCreatedCounter != nil {
			prometheus.BusinessCreatedCounter.Inc()
		}
	} else if prometheus.BusinessReusedCounter != nil {
		prometheus.BusinessReusedCounter.Inc()
	}

	return c.JSON(http.StatusCreated, outcome)
}

// submissionError maps pipeline failures onto HTTP responses: field-level
// messages for validation problems, a retryable message for I/O failures.
func submissionError(c echo.Context, outcome service.Outcome, err error) error {
	log := logger.FromContext(c)

	var fieldErrors service.ValidationErrors
	switch {
	case errors.As(err, &fieldErrors):
		if prometheus.ValidationFailureCounter != nil {
			prometheus.ValidationFailureCounter.Inc()
		}
		log.Warn("Report submission failed validation", zap.Int("field_errors", len(fieldErrors)))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":             "validation_failed",
			"validation_errors": fieldErrors,
		})
	case errors.Is(err, service.ErrConflict):
		log.Error("Report submission conflict", zap.String("failed_at", string(outcome.FailedAt)), zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":             "conflict",
			"error_description": "Submission conflicted with a concurrent change, please try again",
		})
	default:
		log.Error("Report submission failed", zap.String("failed_at", string(outcome.FailedAt)), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":             "temporarily_unavailable",
			"error_description": "Could not store the report right now, please try again",
		})
	}
}
