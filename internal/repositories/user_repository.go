package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Counts returns how many properties and user accounts the user owns.
	Counts(ctx context.Context, id uuid.UUID) (properties int, userAccounts int, err error)
}

type userRepo struct {
	db        DB
	versioned *versionedRepo[*models.User]
}

func NewUserRepository(db DB) UserRepository {
	r := &userRepo{db: db}
	r.versioned = newVersionedRepo(selectOne(db, baseSelectUser()+" WHERE id=$1", scanUser), r.UpdateIfVersion)
	return r
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO users (
            id, username, email, first_name, last_name, phone_number,
            password_hash, is_staff, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
    `,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PhoneNumber,
		u.PasswordHash, u.IsStaff,
	)
	return mapUserWriteError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.versioned.load(ctx, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, baseSelectUser()+" WHERE username=$1", username))
}

func (r *userRepo) UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE users SET
            email=$1, first_name=$2, last_name=$3, phone_number=$4,
            password_hash=$5, updated_at=NOW(), row_version=row_version+1
        WHERE id=$6 AND row_version=$7
    `,
		u.Email, u.FirstName, u.LastName, u.PhoneNumber, u.PasswordHash,
		u.ID, expected,
	)
	return tag, mapUserWriteError(err)
}

func (r *userRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	return r.versioned.update(ctx, id, mutate)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepo) Counts(ctx context.Context, id uuid.UUID) (int, int, error) {
	var props, accounts int
	err := r.db.QueryRow(ctx, `
        SELECT
            (SELECT count(*) FROM properties WHERE owner_id=$1),
            (SELECT count(*) FROM user_accounts WHERE creator_id=$1)
    `, id).Scan(&props, &accounts)
	return props, accounts, err
}

func mapUserWriteError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint := pgErrorCode(err)
	if code != pgUniqueViolation {
		return err
	}
	if constraint == "users_email_key" {
		return utils.ErrEmailExists
	}
	return utils.ErrUsernameExists
}

func baseSelectUser() string {
	return `
        SELECT id, username, email, first_name, last_name, phone_number,
               password_hash, is_staff, created_at, updated_at, row_version
        FROM users`
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.PasswordHash, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
