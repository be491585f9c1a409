package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type SlotRepository interface {
	Create(ctx context.Context, s *domain.TimeSlot) error
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	// Exists reports whether the advisor already has a slot at that exact
	// date and start, excluding excludeID (0 for creation).
	Exists(ctx context.Context, advisorID int64, date time.Time, start string, excludeID int64) (bool, error)
	ListUpcomingByAdvisor(ctx context.Context, advisorID int64, from time.Time) ([]*domain.TimeSlot, error)
	ListOpen(ctx context.Context, from time.Time) ([]*domain.TimeSlot, error)
	Update(ctx context.Context, s *domain.TimeSlot) error
	SetBooked(ctx context.Context, id int64, booked bool) error
	Delete(ctx context.Context, id int64) error
}

type slotRepo struct {
	db *pgxpool.Pool
}

func NewSlotRepo(db *pgxpool.Pool) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Create(ctx context.Context, s *domain.TimeSlot) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO time_slots (advisor_id, slot_date, start_time, end_time, is_booked)
		VALUES ($1,$2,$3,$4,FALSE)
		RETURNING id, created_at
	`, s.AdvisorID, s.Date, s.StartTime, s.EndTime).Scan(&s.ID, &s.CreatedAt)
	if err != nil && xerrors.ParsePGErrorCode(err) == "23505" {
		return xerrors.ErrDuplicateSlot
	}
	return err
}

func (r *slotRepo) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := r.db.QueryRow(ctx, `
		SELECT id, advisor_id, slot_date, start_time, end_time, is_booked, created_at
		FROM time_slots WHERE id=$1
	`, id).Scan(&s.ID, &s.AdvisorID, &s.Date, &s.StartTime, &s.EndTime, &s.IsBooked, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *slotRepo) Exists(ctx context.Context, advisorID int64, date time.Time, start string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM time_slots
			WHERE advisor_id=$1 AND slot_date=$2 AND start_time=$3 AND id <> $4
		)
	`, advisorID, date, start, excludeID).Scan(&exists)
	return exists, err
}

func (r *slotRepo) ListUpcomingByAdvisor(ctx context.Context, advisorID int64, from time.Time) ([]*domain.TimeSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.advisor_id, s.slot_date, s.start_time, s.end_time, s.is_booked, s.created_at,
			COUNT(c.id)
		FROM time_slots s
		LEFT JOIN consultations c ON c.slot_id = s.id
		WHERE s.advisor_id=$1 AND s.slot_date >= $2
		GROUP BY s.id
		ORDER BY s.slot_date, s.start_time
	`, advisorID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*domain.TimeSlot
	for rows.Next() {
		var s domain.TimeSlot
		if err := rows.Scan(&s.ID, &s.AdvisorID, &s.Date, &s.StartTime, &s.EndTime, &s.IsBooked,
			&s.CreatedAt, &s.BookingCount); err != nil {
			return nil, err
		}
		slots = append(slots, &s)
	}
	return slots, rows.Err()
}

func (r *slotRepo) ListOpen(ctx context.Context, from time.Time) ([]*domain.TimeSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.advisor_id, s.slot_date, s.start_time, s.end_time, s.is_booked, s.created_at,
			u.username, u.email
		FROM time_slots s
		JOIN users u ON u.id = s.advisor_id
		WHERE s.is_booked=FALSE AND s.slot_date >= $1
		ORDER BY s.slot_date, s.start_time
	`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*domain.TimeSlot
	for rows.Next() {
		var s domain.TimeSlot
		if err := rows.Scan(&s.ID, &s.AdvisorID, &s.Date, &s.StartTime, &s.EndTime, &s.IsBooked,
			&s.CreatedAt, &s.AdvisorName, &s.AdvisorEmail); err != nil {
			return nil, err
		}
		slots = append(slots, &s)
	}
	return slots, rows.Err()
}

func (r *slotRepo) Update(ctx context.Context, s *domain.TimeSlot) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE time_slots SET slot_date=$1, start_time=$2, end_time=$3 WHERE id=$4
	`, s.Date, s.StartTime, s.EndTime, s.ID)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrDuplicateSlot
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *slotRepo) SetBooked(ctx context.Context, id int64, booked bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE time_slots SET is_booked=$1 WHERE id=$2`, booked, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *slotRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM time_slots WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
