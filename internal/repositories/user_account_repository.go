package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
)

// userAccountOrderColumns whitelists the sortable columns.
var userAccountOrderColumns = map[string]string{
	"created_at":        "ua.created_at",
	"name":              "ua.name",
	"creator__username": "u.username",
}

// IsValidUserAccountOrdering reports whether field can be used in OrderBy.
func IsValidUserAccountOrdering(field string) bool {
	_, ok := userAccountOrderColumns[field]
	return ok
}

type UserAccountRepository interface {
	Create(ctx context.Context, ua *models.UserAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserAccountWithCreator, error)
	List(ctx context.Context, f models.UserAccountFilter) ([]*models.UserAccountWithCreator, int, error)
	Update(ctx context.Context, ua *models.UserAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userAccountRepo struct {
	db DB
}

func NewUserAccountRepository(db DB) UserAccountRepository {
	return &userAccountRepo{db: db}
}

func (r *userAccountRepo) Create(ctx context.Context, ua *models.UserAccount) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO user_accounts (id, useraccount_id, name, avatar, creator_id, created_at)
        VALUES ($1,$2,$3,$4,$5, NOW())
        RETURNING created_at
    `, ua.ID, ua.UserAccountID, ua.Name, ua.Avatar, ua.CreatorID).Scan(&ua.CreatedAt)
	if isUniqueViolation(err) {
		return utils.ErrUserAccountIDExists
	}
	return err
}

func (r *userAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UserAccountWithCreator, error) {
	ua, err := scanUserAccount(r.db.QueryRow(ctx, baseSelectUserAccount()+" WHERE ua.id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ua, err
}

func (r *userAccountRepo) List(ctx context.Context, f models.UserAccountFilter) ([]*models.UserAccountWithCreator, int, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, strings.ReplaceAll(cond, "$?", fmt.Sprintf("$%d", len(args))))
	}
	if f.CreatorID != nil {
		add("ua.creator_id = $?", *f.CreatorID)
	}
	if f.Branch != "" {
		add("ua.name ILIKE $?", "%"+f.Branch+"%")
	}
	if f.CreatorUsername != "" {
		add("u.username ILIKE $?", "%"+f.CreatorUsername+"%")
	}
	if f.Search != "" {
		add("(ua.useraccount_id ILIKE $? OR ua.name ILIKE $? OR u.username ILIKE $?)", "%"+f.Search+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countSQL := "SELECT count(*) FROM user_accounts ua JOIN users u ON u.id = ua.creator_id" + where
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderCol, ok := userAccountOrderColumns[f.OrderBy]
	if !ok {
		orderCol = "ua.created_at"
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, ua.id", orderCol, dir)

	page, args := pageClause(len(args)+1, f.Limit, f.Offset, args)
	rows, err := r.db.Query(ctx, baseSelectUserAccount()+where+order+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.UserAccountWithCreator
	for rows.Next() {
		ua, err := scanUserAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ua)
	}
	return out, total, rows.Err()
}

func (r *userAccountRepo) Update(ctx context.Context, ua *models.UserAccount) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE user_accounts SET useraccount_id=$1, name=$2, avatar=$3 WHERE id=$4
    `, ua.UserAccountID, ua.Name, ua.Avatar, ua.ID)
	if isUniqueViolation(err) {
		return utils.ErrUserAccountIDExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectUserAccount() string {
	return `
        SELECT ua.id, ua.useraccount_id, ua.name, ua.avatar, ua.creator_id, ua.created_at, u.username
        FROM user_accounts ua
        JOIN users u ON u.id = ua.creator_id`
}

func scanUserAccount(row pgx.Row) (*models.UserAccountWithCreator, error) {
	var ua models.UserAccountWithCreator
	err := row.Scan(&ua.ID, &ua.UserAccountID, &ua.Name, &ua.Avatar, &ua.CreatorID, &ua.CreatedAt, &ua.CreatorUsername)
	if err != nil {
		return nil, err
	}
	return &ua, nil
}
