package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/activity"
	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/repository"
)

const activityWriteTimeout = 3 * time.Second

// ActivityService records session events to the audit trail.
type ActivityService struct {
	dispatcher events.Dispatcher
	sink       activity.Sink
	history    repository.ActivityRepository
	logger     *zap.Logger
}

// NewActivityService creates the service. history may be nil when no
// database is configured.
func NewActivityService(dispatcher events.Dispatcher, sink activity.Sink, history repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		sink:       sink,
		history:    history,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the audited session events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil || a.sink == nil {
		return
	}
	for _, t := range events.AuditedSessionEvents {
		a.dispatcher.Subscribe(t, a.handle)
	}
}

func (a *ActivityService) handle(ctx context.Context, event events.Event) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityWriteTimeout)
	defer cancel()
	return a.sink.Write(writeCtx, activity.FromEvent(event))
}

// Recent returns the user's latest session activity, newest first.
func (a *ActivityService) Recent(ctx context.Context, userID int64, limit int) ([]domain.ActivityRecord, error) {
	if a == nil || a.history == nil || userID == 0 {
		return nil, nil
	}
	return a.history.ListByUser(ctx, userID, limit)
}
