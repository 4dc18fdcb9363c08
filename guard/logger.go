package guard

import (
	"log/slog"
	"time"

	"github.com/denizatac/gatehouse/token"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType     string        // "success" or "failure"
	Surface       string        // "api", "page" or "grpc"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	UserID        int64         // Subject from claims (zero on failure)
	FailureReason string        // Verification failure code (on failure)
	TokenPreview  string        // Redacted token preview
	Latency       time.Duration // Verification latency
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e SecurityEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("event", e.EventType),
		slog.String("surface", e.Surface),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.Int64("user_id", e.UserID),
		slog.String("failure_reason", e.FailureReason),
		slog.String("token", redactToken(e.TokenPreview)),
		slog.Duration("latency", e.Latency),
	)
}

// redactToken redacts sensitive token data. Full token contents are
// never logged.
func redactToken(raw string) string {
	if len(raw) == 0 {
		return ""
	}
	if len(raw) <= 8 {
		return "***"
	}
	return raw[:8] + "..."
}

func logAuthSuccess(logger *slog.Logger, surface, requestID string, userID int64, raw string, latency time.Duration) {
	if logger == nil {
		return
	}
	logger.Info("authentication succeeded", "auth_event", SecurityEvent{
		EventType:    "success",
		Surface:      surface,
		Timestamp:    time.Now(),
		RequestID:    requestID,
		UserID:       userID,
		TokenPreview: raw,
		Latency:      latency,
	})
}

func logAuthFailure(logger *slog.Logger, surface, requestID, raw string, err error, latency time.Duration) {
	if logger == nil {
		return
	}
	logger.Warn("authentication failed", "auth_event", SecurityEvent{
		EventType:     "failure",
		Surface:       surface,
		Timestamp:     time.Now(),
		RequestID:     requestID,
		FailureReason: string(token.CodeOf(err)),
		TokenPreview:  raw,
		Latency:       latency,
	})
}
