package finance

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRecurringProcessor schedules the due-template materialization on
// the given cron spec (default: daily at 02:00). The returned cron is
// already running; callers stop it on shutdown.
func StartRecurringProcessor(service *Service, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		created, err := service.ProcessDue(time.Now())
		if err != nil {
			slog.Error("recurring transaction processing failed", "error", err)
			return
		}
		if created > 0 {
			slog.Info("recurring transactions processed", "created", created)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
