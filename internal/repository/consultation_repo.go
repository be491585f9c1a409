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

type ConsultationRepository interface {
	// Book inserts the consultation and marks the slot booked in one
	// transaction. Fails with ErrSlotUnavailable when the slot was taken
	// in between.
	Book(ctx context.Context, c *domain.Consultation) error
	GetByID(ctx context.Context, id int64) (*domain.Consultation, error)
	ListByCustomer(ctx context.Context, userID int64) ([]*domain.Consultation, error)
	ListByAdvisor(ctx context.Context, advisorID int64) ([]*domain.Consultation, error)
	// HasBookingAt reports whether the customer already holds a booked
	// consultation at that exact date and start time with any advisor.
	HasBookingAt(ctx context.Context, userID int64, date time.Time, start string) (bool, error)
	// Cancel flips the consultation to cancelled and reopens its slot.
	Cancel(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.ConsultationStatus) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.ConsultationStatus) (int64, error)
}

type consultationRepo struct {
	db *pgxpool.Pool
}

func NewConsultationRepo(db *pgxpool.Pool) ConsultationRepository {
	return &consultationRepo{db: db}
}

func (r *consultationRepo) Book(ctx context.Context, c *domain.Consultation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE time_slots SET is_booked=TRUE WHERE id=$1 AND is_booked=FALSE
	`, c.SlotID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrSlotUnavailable
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO consultations (user_id, advisor_id, slot_id, status, meeting_link, calendar_event_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, c.UserID, c.AdvisorID, c.SlotID, c.Status, c.MeetingLink, c.EventID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const consultationJoin = `
	SELECT c.id, c.user_id, c.advisor_id, c.slot_id, c.status, c.meeting_link, c.calendar_event_id, c.notes, c.created_at,
		s.slot_date, s.start_time, s.end_time,
		cu.username, cu.email, au.username, au.email
	FROM consultations c
	JOIN time_slots s ON s.id = c.slot_id
	JOIN users cu ON cu.id = c.user_id
	JOIN users au ON au.id = c.advisor_id`

func scanConsultation(row pgx.Row) (*domain.Consultation, error) {
	var c domain.Consultation
	err := row.Scan(&c.ID, &c.UserID, &c.AdvisorID, &c.SlotID, &c.Status, &c.MeetingLink, &c.EventID, &c.Notes,
		&c.CreatedAt, &c.SlotDate, &c.SlotStart, &c.SlotEnd,
		&c.CustomerName, &c.CustomerEmail, &c.AdvisorName, &c.AdvisorEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *consultationRepo) GetByID(ctx context.Context, id int64) (*domain.Consultation, error) {
	return scanConsultation(r.db.QueryRow(ctx, consultationJoin+` WHERE c.id=$1`, id))
}

func (r *consultationRepo) list(ctx context.Context, where string, arg any) ([]*domain.Consultation, error) {
	rows, err := r.db.Query(ctx, consultationJoin+where+` ORDER BY s.slot_date, s.start_time`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *consultationRepo) ListByCustomer(ctx context.Context, userID int64) ([]*domain.Consultation, error) {
	return r.list(ctx, ` WHERE c.user_id=$1`, userID)
}

func (r *consultationRepo) ListByAdvisor(ctx context.Context, advisorID int64) ([]*domain.Consultation, error) {
	return r.list(ctx, ` WHERE c.advisor_id=$1`, advisorID)
}

func (r *consultationRepo) HasBookingAt(ctx context.Context, userID int64, date time.Time, start string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM consultations c
			JOIN time_slots s ON s.id = c.slot_id
			WHERE c.user_id=$1 AND s.slot_date=$2 AND s.start_time=$3 AND c.status='booked'
		)
	`, userID, date, start).Scan(&exists)
	return exists, err
}

func (r *consultationRepo) Cancel(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var slotID int64
	err = tx.QueryRow(ctx, `
		UPDATE consultations SET status='cancelled' WHERE id=$1 RETURNING slot_id
	`, id).Scan(&slotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrNotFound
		}
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE time_slots SET is_booked=FALSE WHERE id=$1`, slotID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *consultationRepo) SetStatus(ctx context.Context, id int64, status domain.ConsultationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE consultations SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *consultationRepo) UpdateNotes(ctx context.Context, id int64, notes string) error {
	tag, err := r.db.Exec(ctx, `UPDATE consultations SET notes=$1 WHERE id=$2`, notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *consultationRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM consultations`).Scan(&n)
	return n, err
}

func (r *consultationRepo) CountByStatus(ctx context.Context, status domain.ConsultationStatus) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM consultations WHERE status=$1`, status).Scan(&n)
	return n, err
}
