package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// MarkOverdueTasks flips pending tasks whose date has passed to overdue and
// returns how many rows changed.
func (s *Store) MarkOverdueTasks(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`update tasks set status=$1, updated_at=now() where status=$2 and scheduled_date < current_date`,
		StatusOverdue, StatusPending)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// startOverdueSweeper runs the overdue sweep once at boot and then daily.
// The caller stops the returned cron on shutdown.
func startOverdueSweeper(store *Store, log *slog.Logger) *cron.Cron {
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := store.MarkOverdueTasks(ctx)
		if err != nil {
			log.Error("overdue sweep", "err", err)
			return
		}
		if n > 0 {
			log.Info("overdue sweep", "tasks", n)
		}
	}
	c := cron.New()
	_, _ = c.AddFunc("@daily", sweep)
	c.Start()
	go sweep()
	return c
}
