package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
)

var dayIndex = map[string]int{
	"Sunday":    0,
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
}

// AvailabilityEngine projects recurring weekly appointment templates into
// concrete bookable slot windows. It is a pure read: templates and booked
// slots are never mutated.
type AvailabilityEngine struct {
	schedules    ports.ScheduleStore
	horizonWeeks int
	now          func() time.Time
	logger       *slog.Logger
}

func NewAvailabilityEngine(schedules ports.ScheduleStore, horizonWeeks int, now func() time.Time, logger *slog.Logger) *AvailabilityEngine {
	if horizonWeeks <= 0 {
		horizonWeeks = 6
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityEngine{
		schedules:    schedules,
		horizonWeeks: horizonWeeks,
		now:          now,
		logger:       logger,
	}
}

// Windows expands every matching template into dated slot windows over the
// horizon, excluding booked slots. Malformed templates are skipped, never
// fatal.
func (e *AvailabilityEngine) Windows(ctx context.Context, doctorUID, hospitalUID string, isOnline *bool) ([]domain.SlotWindow, error) {
	templates, err := e.schedules.ListTemplates(ctx, doctorUID, hospitalUID, isOnline)
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list templates", err)
	}
	if len(templates) == 0 {
		return nil, nil
	}

	today := dateOnly(e.now())
	horizonEnd := today.AddDate(0, 0, (e.horizonWeeks+1)*7)

	booked, err := e.schedules.ListBookedSlots(ctx, doctorUID, hospitalUID, dateKey(today), dateKey(horizonEnd))
	if err != nil {
		return nil, domain.WrapError(domain.ErrBackendUnavailable, "list booked slots", err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[slotKey(b.DoctorUID, b.HospitalUID, dateKey(dateOnly(b.Date)), b.Slot)] = struct{}{}
	}

	var windows []domain.SlotWindow
	for _, tpl := range templates {
		expanded, err := e.expandTemplate(tpl, today, taken)
		if err != nil {
			e.logger.Warn("skipping malformed appointment template", "template_id", tpl.ID, "error", err)
			continue
		}
		windows = append(windows, expanded...)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Date.Before(windows[j].Date)
	})
	return windows, nil
}

func (e *AvailabilityEngine) expandTemplate(tpl domain.AppointmentTemplate, today time.Time, taken map[string]struct{}) ([]domain.SlotWindow, error) {
	target, ok := dayIndex[tpl.Day]
	if !ok {
		return nil, domain.WrapError(domain.ErrScheduleMalformed, "expand template", fmt.Errorf("unmapped day %q", tpl.Day))
	}

	startMin := int(tpl.StartHour*60 + 0.5)
	endMin := int(tpl.EndHour*60 + 0.5)
	if endMin <= startMin || tpl.SessionDuration <= 0 {
		return nil, domain.WrapError(domain.ErrScheduleMalformed, "expand template", fmt.Errorf("invalid bounds [%v,%v)/%d", tpl.StartHour, tpl.EndHour, tpl.SessionDuration))
	}

	var expiry time.Time
	switch tpl.Every {
	case domain.EveryMonth:
		expiry = tpl.StartDate.AddDate(0, 1, 0)
	case domain.EveryYear:
		expiry = tpl.StartDate.AddDate(1, 0, 0)
	}

	daysToAdd := (target - int(today.Weekday()) + 7) % 7

	var windows []domain.SlotWindow
	for week := 0; week <= e.horizonWeeks; week++ {
		date := today.AddDate(0, 0, daysToAdd+week*7)
		if !tpl.StartDate.IsZero() && date.Before(dateOnly(tpl.StartDate)) {
			continue
		}
		if !expiry.IsZero() && date.After(dateOnly(expiry)) {
			continue
		}

		var slots []string
		for cur := startMin; cur < endMin; cur += tpl.SessionDuration {
			slot24 := fmt.Sprintf("%02d:%02d", cur/60, cur%60)
			if _, booked := taken[slotKey(tpl.DoctorUID, tpl.HospitalUID, dateKey(date), slot24)]; booked {
				continue
			}
			slots = append(slots, formatTime12(cur))
		}
		if len(slots) == 0 {
			continue
		}
		windows = append(windows, domain.SlotWindow{
			Date:     date,
			DayName:  tpl.Day,
			IsOnline: tpl.IsOnline,
			Price:    tpl.Price,
			Currency: tpl.Currency,
			Slots:    slots,
		})
	}
	return windows, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func slotKey(doctorUID, hospitalUID, date, slot string) string {
	return doctorUID + "|" + hospitalUID + "|" + date + "|" + slot
}

func formatTime12(minutes int) string {
	h, m := minutes/60, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h12, m, suffix)
}
