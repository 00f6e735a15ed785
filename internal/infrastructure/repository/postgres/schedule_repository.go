package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
)

// ScheduleRepository implements ports.ScheduleStore on Postgres.
type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) ListTemplates(ctx context.Context, doctorUID, hospitalUID string, isOnline *bool) ([]domain.AppointmentTemplate, error) {
	query := `SELECT id, doctor_uid, hospital_uid, day, start_hour, end_hour, session_duration,
	start_date, COALESCE(recur_every, ''), is_online, price, COALESCE(currency, '')
FROM appointment_templates
WHERE is_deleted = FALSE AND doctor_uid = $1 AND hospital_uid = $2`
	args := []any{doctorUID, hospitalUID}
	if isOnline != nil {
		args = append(args, *isOnline)
		query += fmt.Sprintf(" AND is_online = $%d", len(args))
	}
	query += " ORDER BY day, start_hour"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.AppointmentTemplate
	for rows.Next() {
		var (
			tpl       domain.AppointmentTemplate
			startDate sql.NullTime
		)
		if err := rows.Scan(
			&tpl.ID, &tpl.DoctorUID, &tpl.HospitalUID, &tpl.Day,
			&tpl.StartHour, &tpl.EndHour, &tpl.SessionDuration,
			&startDate, &tpl.Every, &tpl.IsOnline, &tpl.Price, &tpl.Currency,
		); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if startDate.Valid {
			tpl.StartDate = startDate.Time
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// ListBookedSlots returns reservations for one doctor/hospital pair whose date
// falls inside the [from, to] window; bounds are "YYYY-MM-DD" strings.
func (r *ScheduleRepository) ListBookedSlots(ctx context.Context, doctorUID, hospitalUID string, from, to string) ([]domain.BookedSlot, error) {
	const query = `SELECT doctor_uid, hospital_uid, booking_date, slot
FROM booked_slots
WHERE doctor_uid = $1 AND hospital_uid = $2
	AND booking_date::date >= $3::date AND booking_date::date <= $4::date
ORDER BY booking_date, slot`

	rows, err := r.db.QueryContext(ctx, query, doctorUID, hospitalUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.BookedSlot
	for rows.Next() {
		var slot domain.BookedSlot
		if err := rows.Scan(&slot.DoctorUID, &slot.HospitalUID, &slot.Date, &slot.Slot); err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked slots: %w", err)
	}
	return slots, nil
}
