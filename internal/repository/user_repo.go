package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID int64) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateCalendarTokens(ctx context.Context, id int64, tokens []byte) error
	Delete(ctx context.Context, id int64) error
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, email, password_hash, role, first_name, last_name, alias,
	date_of_birth, phone_number, country, address_line_1, address_line_2, postcode,
	image_path, calendar_tokens, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
		&u.Alias, &u.DateOfBirth, &u.PhoneNumber, &u.Country, &u.AddressLine1, &u.AddressLine2,
		&u.Postcode, &u.ImagePath, &u.CalendarTokens, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role, first_name, last_name, alias,
			date_of_birth, phone_number, country, address_line_1, address_line_2, postcode, image_path)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at
	`, u.Username, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Alias,
		u.DateOfBirth, u.PhoneNumber, u.Country, u.AddressLine1, u.AddressLine2, u.Postcode,
		u.ImagePath).Scan(&u.ID, &u.CreatedAt)
	if err != nil && xerrors.ParsePGErrorCode(err) == "23505" {
		return xerrors.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *userRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE (username=$1 OR email=$2) AND id <> $3
		)
	`, username, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET username=$1, email=$2, role=$3, first_name=$4, last_name=$5, alias=$6,
			date_of_birth=$7, phone_number=$8, country=$9, address_line_1=$10, address_line_2=$11,
			postcode=$12, image_path=$13
		WHERE id=$14
	`, u.Username, u.Email, u.Role, u.FirstName, u.LastName, u.Alias,
		u.DateOfBirth, u.PhoneNumber, u.Country, u.AddressLine1, u.AddressLine2,
		u.Postcode, u.ImagePath, u.ID)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrUserAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepo) UpdateCalendarTokens(ctx context.Context, id int64, tokens []byte) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET calendar_tokens=$1 WHERE id=$2`, tokens, id)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}
