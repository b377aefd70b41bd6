package worker

import (
	"github.com/spec-kit/store-dashboard/internal/service"
)

// StartActivityWorker registers the activity handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
