package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
)

type PropertyImageRepository interface {
	Create(ctx context.Context, img *models.PropertyImage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyImage, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyImageRepo struct {
	db DB
}

func NewPropertyImageRepository(db DB) PropertyImageRepository {
	return &propertyImageRepo{db: db}
}

func (r *propertyImageRepo) Create(ctx context.Context, img *models.PropertyImage) error {
	return r.db.QueryRow(ctx, `
        INSERT INTO property_images (id, property_id, image, created_at)
        VALUES ($1,$2,$3, NOW())
        RETURNING created_at
    `, img.ID, img.PropertyID, img.Image).Scan(&img.CreatedAt)
}

func (r *propertyImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyImage, error) {
	var img models.PropertyImage
	err := r.db.QueryRow(ctx, `
        SELECT id, property_id, image, created_at FROM property_images WHERE id=$1
    `, id).Scan(&img.ID, &img.PropertyID, &img.Image, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *propertyImageRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyImage, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, property_id, image, created_at FROM property_images
        WHERE property_id=$1
        ORDER BY created_at
    `, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyImage
	for rows.Next() {
		var img models.PropertyImage
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.Image, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}

func (r *propertyImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_images WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
