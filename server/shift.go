package main

import (
	"context"
	"log/slog"
	"time"
)

const monthLayout = "2006-01"

// TaskShift records one task's date change, kept for the audit log.
type TaskShift struct {
	TaskID  int64
	OldDate time.Time
	NewDate time.Time
}

// ShiftReport summarises a shift run. Failed counts tasks whose update
// errored and was skipped.
type ShiftReport struct {
	MonthDelta int
	Shifted    []TaskShift
	Failed     int
}

// monthDelta returns the signed whole-month distance between two YYYY-MM
// values. ok is false when either value is malformed.
func monthDelta(oldMonth, newMonth string) (int, bool) {
	o, err := time.Parse(monthLayout, oldMonth)
	if err != nil {
		return 0, false
	}
	n, err := time.Parse(monthLayout, newMonth)
	if err != nil {
		return 0, false
	}
	return (n.Year()-o.Year())*12 + int(n.Month()) - int(o.Month()), true
}

// addMonths shifts a date by whole months, clamping the day to the last
// valid day of the target month: 2025-01-31 plus one month is 2025-02-28,
// never a rollover into March.
func addMonths(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := d.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// ShiftCalendarTasks realigns every dated task of a calendar after its start
// month moved from oldMonth to newMonth. Equal or missing months are an
// explicit no-op. Each task is persisted on its own; a failing task is
// logged and skipped so that a single bad row never blocks the calendar
// update that triggered the shift. The run is not atomic across tasks and
// concurrent shifts are last-writer-wins.
func (s *Store) ShiftCalendarTasks(ctx context.Context, log *slog.Logger, calendarID int64, oldMonth, newMonth string) ShiftReport {
	if oldMonth == "" || newMonth == "" || oldMonth == newMonth {
		return ShiftReport{}
	}
	delta, ok := monthDelta(oldMonth, newMonth)
	if !ok {
		log.Error("shift skipped, bad month", "calendar_id", calendarID, "old", oldMonth, "new", newMonth)
		return ShiftReport{}
	}
	if delta == 0 {
		return ShiftReport{}
	}

	rows, err := s.db.QueryContext(ctx,
		`select id, scheduled_date from tasks where calendar_id=$1 and scheduled_date is not null order by id`, calendarID)
	if err != nil {
		log.Error("shift list tasks", "calendar_id", calendarID, "err", err)
		return ShiftReport{MonthDelta: delta}
	}
	defer rows.Close()

	type pending struct {
		id   int64
		date time.Time
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.date); err != nil {
			log.Error("shift scan task", "calendar_id", calendarID, "err", err)
			return ShiftReport{MonthDelta: delta}
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("shift list tasks", "calendar_id", calendarID, "err", err)
		return ShiftReport{MonthDelta: delta}
	}

	report := ShiftReport{MonthDelta: delta}
	for _, p := range todo {
		newDate := addMonths(p.date, delta)
		_, err := s.db.ExecContext(ctx,
			`update tasks set scheduled_date=$1, display_date=$1, updated_at=now() where id=$2`, newDate, p.id)
		if err != nil {
			log.Error("shift task", "task_id", p.id, "err", err)
			report.Failed++
			continue
		}
		report.Shifted = append(report.Shifted, TaskShift{TaskID: p.id, OldDate: p.date, NewDate: newDate})
		log.Info("task shifted", "task_id", p.id,
			"from", p.date.Format("2006-01-02"), "to", newDate.Format("2006-01-02"))
	}
	return report
}
