// Package activity turns session events into audit records and writes them
// to one or more sinks.
package activity

import (
	"context"
	"errors"
	"strings"

	"github.com/mssola/useragent"
	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/repository"
)

// Sink persists activity records.
type Sink interface {
	Write(ctx context.Context, record domain.ActivityRecord) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, record domain.ActivityRecord) error

func (f SinkFunc) Write(ctx context.Context, record domain.ActivityRecord) error {
	return f(ctx, record)
}

// LogSink writes records to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Write(_ context.Context, record domain.ActivityRecord) error {
	s.Logger.Info("session activity",
		zap.String("activity_id", record.ID),
		zap.String("type", record.Type),
		zap.Int64("user_id", record.UserID),
		zap.String("email", record.Email),
		zap.String("token_fingerprint", record.TokenFingerprint),
		zap.String("browser", record.Browser),
		zap.String("os", record.OS),
		zap.String("ip", record.IP),
		zap.String("message", record.Message),
	)
	return nil
}

// PostgresSink inserts records through the activity repository.
type PostgresSink struct {
	repo repository.ActivityRepository
}

// NewPostgresSink builds a sink over repo.
func NewPostgresSink(repo repository.ActivityRepository) *PostgresSink {
	return &PostgresSink{repo: repo}
}

func (s *PostgresSink) Write(ctx context.Context, record domain.ActivityRecord) error {
	return s.repo.Create(ctx, &record)
}

// MultiSink writes to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, record domain.ActivityRecord) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromEvent builds the record for a session event.
func FromEvent(ev events.Event) domain.ActivityRecord {
	record := domain.ActivityRecord{
		ID:               ev.ID,
		Type:             string(ev.Type),
		UserID:           ev.UserID,
		Email:            ev.Email,
		TokenFingerprint: ev.TokenFingerprint,
		IP:               ev.Client.IP,
		Message:          message(ev.Payload),
		OccurredAt:       ev.Timestamp,
	}

	if ua := strings.TrimSpace(ev.Client.UserAgent); ua != "" {
		parsed := useragent.New(ua)
		name, version := parsed.Browser()
		record.Browser = strings.TrimSpace(name + " " + version)
		record.OS = parsed.OS()
		record.Platform = parsed.Platform()
		if parsed.Bot() {
			record.Platform = "bot"
		}
	}
	return record
}

func message(payload any) string {
	switch p := payload.(type) {
	case *events.FailurePayload:
		if p != nil {
			return p.Message
		}
	case events.FailurePayload:
		return p.Message
	case events.StoreAddedPayload:
		return p.Name
	}
	return ""
}
