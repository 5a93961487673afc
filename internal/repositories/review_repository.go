package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
)

type ReviewRepository interface {
	// Create returns utils.ErrDuplicateReview when the author already
	// reviewed the property.
	Create(ctx context.Context, rv *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewWithAuthor, error)
	Exists(ctx context.Context, propertyID, authorID uuid.UUID) (bool, error)
	List(ctx context.Context, propertyID *uuid.UUID, limit, offset int) ([]*models.ReviewWithAuthor, int, error)
	Summary(ctx context.Context, propertyID uuid.UUID) (models.RatingSummary, error)
	Update(ctx context.Context, rv *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewRepo struct {
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO reviews (id, property_id, author_id, rating, comment, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5, NOW(), NOW())
        RETURNING created_at, updated_at
    `, rv.ID, rv.PropertyID, rv.AuthorID, rv.Rating, rv.Comment).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if isUniqueViolation(err) {
		return utils.ErrDuplicateReview
	}
	return err
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewWithAuthor, error) {
	rv, err := scanReview(r.db.QueryRow(ctx, baseSelectReview()+" WHERE r.id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rv, err
}

func (r *reviewRepo) Exists(ctx context.Context, propertyID, authorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM reviews WHERE property_id=$1 AND author_id=$2)
    `, propertyID, authorID).Scan(&exists)
	return exists, err
}

func (r *reviewRepo) List(ctx context.Context, propertyID *uuid.UUID, limit, offset int) ([]*models.ReviewWithAuthor, int, error) {
	where := ""
	var args []any
	if propertyID != nil {
		where = " WHERE r.property_id=$1"
		args = append(args, *propertyID)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM reviews r"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := pageClause(len(args)+1, limit, offset, args)
	rows, err := r.db.Query(ctx, baseSelectReview()+where+" ORDER BY r.created_at DESC"+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.ReviewWithAuthor
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}

func (r *reviewRepo) Summary(ctx context.Context, propertyID uuid.UUID) (models.RatingSummary, error) {
	var s models.RatingSummary
	err := r.db.QueryRow(ctx, `
        SELECT count(*), COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE property_id=$1
    `, propertyID).Scan(&s.Count, &s.Average)
	return s, err
}

func (r *reviewRepo) Update(ctx context.Context, rv *models.Review) error {
	return r.db.QueryRow(ctx, `
        UPDATE reviews SET rating=$1, comment=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at
    `, rv.Rating, rv.Comment, rv.ID).Scan(&rv.UpdatedAt)
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectReview() string {
	return `
        SELECT r.id, r.property_id, r.author_id, r.rating, r.comment, r.created_at, r.updated_at, u.username
        FROM reviews r
        JOIN users u ON u.id = r.author_id`
}

func scanReview(row pgx.Row) (*models.ReviewWithAuthor, error) {
	var rv models.ReviewWithAuthor
	err := row.Scan(
		&rv.ID, &rv.PropertyID, &rv.AuthorID, &rv.Rating, &rv.Comment,
		&rv.CreatedAt, &rv.UpdatedAt, &rv.AuthorUsername,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
