package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
)

type AmenityRepository interface {
	Create(ctx context.Context, a *models.Amenity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Amenity, error)
	List(ctx context.Context) ([]*models.Amenity, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Amenity, error)
	Update(ctx context.Context, a *models.Amenity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type amenityRepo struct {
	db DB
}

func NewAmenityRepository(db DB) AmenityRepository {
	return &amenityRepo{db: db}
}

func (r *amenityRepo) Create(ctx context.Context, a *models.Amenity) error {
	_, err := r.db.Exec(ctx, `INSERT INTO amenities (id, name) VALUES ($1,$2)`, a.ID, a.Name)
	return err
}

func (r *amenityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Amenity, error) {
	var a models.Amenity
	err := r.db.QueryRow(ctx, `SELECT id, name FROM amenities WHERE id=$1`, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *amenityRepo) List(ctx context.Context) ([]*models.Amenity, error) {
	return r.query(ctx, `SELECT id, name FROM amenities ORDER BY name`)
}

func (r *amenityRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Amenity, error) {
	return r.query(ctx, `
        SELECT a.id, a.name
        FROM amenities a
        JOIN property_amenities pa ON pa.amenity_id = a.id
        WHERE pa.property_id=$1
        ORDER BY a.name
    `, propertyID)
}

func (r *amenityRepo) query(ctx context.Context, sql string, args ...any) ([]*models.Amenity, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Amenity
	for rows.Next() {
		var a models.Amenity
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *amenityRepo) Update(ctx context.Context, a *models.Amenity) error {
	tag, err := r.db.Exec(ctx, `UPDATE amenities SET name=$1 WHERE id=$2`, a.Name, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *amenityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM amenities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
