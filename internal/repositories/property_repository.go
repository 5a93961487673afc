package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
)

// searchVectorExpr is the weighted document the search ranker scores
// against: location first, then title, address and description.
const searchVectorExpr = `
    setweight(to_tsvector('english', coalesce(city, '') || ' ' || coalesce(country, '')), 'A') ||
    setweight(to_tsvector('english', coalesce(title, '')), 'B') ||
    setweight(to_tsvector('english', coalesce(address, '')), 'C') ||
    setweight(to_tsvector('english', coalesce(description, '')), 'D')`

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	// Create inserts the property, its amenity links and its search vector
	// in one transaction.
	Create(ctx context.Context, p *models.Property, amenityIDs []uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListActive(ctx context.Context, f models.PropertyFilter) ([]*models.PropertyListing, int, error)
	Search(ctx context.Context, query string, limit int) ([]*models.PropertyListing, error)

	// UpdateIfVersion writes p, its search vector and, when amenityIDs is
	// non-nil, a replacement amenity set in one transaction.
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64, amenityIDs *[]uuid.UUID) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, amenityIDs *[]uuid.UUID, mutate func(*models.Property) error) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RefreshSearchVectors recomputes every stale search vector and returns
	// how many rows changed.
	RefreshSearchVectors(ctx context.Context) (int64, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	db   DB
	load loadFunc[*models.Property]
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{
		db:   db,
		load: selectOne(db, baseSelectProperty()+" WHERE p.id=$1", scanProperty),
	}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property, amenityIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO properties (
                id, owner_id, category_id, title, description, address, city, country,
                price_per_night, max_guests, bedrooms, bathrooms, main_image, is_active,
                created_at, updated_at, row_version
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14, NOW(), NOW(), 1)
        `,
			p.ID, p.OwnerID, p.CategoryID, p.Title, p.Description, p.Address, p.City, p.Country,
			p.PricePerNight, p.MaxGuests, p.Bedrooms, p.Bathrooms, p.MainImage, p.IsActive,
		)
		if err != nil {
			return err
		}
		if err := refreshSearchVector(ctx, tx, p.ID); err != nil {
			return err
		}
		return insertAmenityLinks(ctx, tx, p.ID, amenityIDs)
	})
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.load(ctx, id)
}

func (r *propertyRepo) ListActive(ctx context.Context, f models.PropertyFilter) ([]*models.PropertyListing, int, error) {
	var (
		conditions = []string{"p.is_active"}
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if f.City != "" {
		add("p.city ILIKE $%d", "%"+f.City+"%")
	}
	if f.Country != "" {
		add("p.country ILIKE $%d", "%"+f.Country+"%")
	}
	if f.CategorySlug != "" {
		add("p.category_id = (SELECT id FROM categories WHERE slug=$%d)", f.CategorySlug)
	}
	if f.MinPrice != nil {
		add("p.price_per_night >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price_per_night <= $%d", *f.MaxPrice)
	}
	if f.MinGuests > 0 {
		add("p.max_guests >= $%d", f.MinGuests)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM properties p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := pageClause(len(args)+1, f.Limit, f.Offset, args)
	rows, err := r.db.Query(ctx, baseSelectListing()+where+" ORDER BY p.created_at DESC"+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.PropertyListing
	for rows.Next() {
		l, err := scanListing(rows, false)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *propertyRepo) Search(ctx context.Context, query string, limit int) ([]*models.PropertyListing, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+propertyColumns+`, u.username, ts_rank(p.search_vector, q) AS rank
        FROM properties p
        JOIN users u ON u.id = p.owner_id,
             plainto_tsquery('english', $1) q
        WHERE p.is_active AND p.search_vector @@ q
        ORDER BY rank DESC, p.created_at DESC
        LIMIT $2
    `, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyListing
	for rows.Next() {
		l, err := scanListing(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *propertyRepo) UpdateIfVersion(
	ctx context.Context,
	p *models.Property,
	expected int64,
	amenityIDs *[]uuid.UUID,
) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		tag, err = tx.Exec(ctx, `
            UPDATE properties SET
                category_id=$1, title=$2, description=$3, address=$4, city=$5, country=$6,
                price_per_night=$7, max_guests=$8, bedrooms=$9, bathrooms=$10,
                main_image=$11, is_active=$12,
                updated_at=NOW(), row_version=row_version+1
            WHERE id=$13 AND row_version=$14
        `,
			p.CategoryID, p.Title, p.Description, p.Address, p.City, p.Country,
			p.PricePerNight, p.MaxGuests, p.Bedrooms, p.Bathrooms,
			p.MainImage, p.IsActive,
			p.ID, expected,
		)
		if err != nil || tag.RowsAffected() != 1 {
			return err
		}
		if amenityIDs != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM property_amenities WHERE property_id=$1`, p.ID); err != nil {
				return err
			}
			if err := insertAmenityLinks(ctx, tx, p.ID, *amenityIDs); err != nil {
				return err
			}
		}
		return refreshSearchVector(ctx, tx, p.ID)
	})
	return tag, err
}

func (r *propertyRepo) UpdateWithRetry(
	ctx context.Context,
	id uuid.UUID,
	amenityIDs *[]uuid.UUID,
	mutate func(*models.Property) error,
) error {
	store := func(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
		return r.UpdateIfVersion(ctx, p, expected, amenityIDs)
	}
	return newVersionedRepo(r.load, store).update(ctx, id, mutate)
}

func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepo) RefreshSearchVectors(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE properties SET search_vector = `+searchVectorExpr+`
        WHERE search_vector IS DISTINCT FROM (`+searchVectorExpr+`)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func refreshSearchVector(ctx context.Context, db DB, id uuid.UUID) error {
	_, err := db.Exec(ctx, `UPDATE properties SET search_vector = `+searchVectorExpr+` WHERE id=$1`, id)
	return err
}

func insertAmenityLinks(ctx context.Context, db DB, propertyID uuid.UUID, amenityIDs []uuid.UUID) error {
	for _, aid := range amenityIDs {
		if _, err := db.Exec(ctx, `
            INSERT INTO property_amenities (property_id, amenity_id)
            VALUES ($1,$2) ON CONFLICT DO NOTHING
        `, propertyID, aid); err != nil {
			return err
		}
	}
	return nil
}

const propertyColumns = `
    p.id, p.owner_id, p.category_id, p.title, p.description, p.address, p.city, p.country,
    p.price_per_night, p.max_guests, p.bedrooms, p.bathrooms, p.main_image, p.is_active,
    p.created_at, p.updated_at, p.row_version`

func baseSelectProperty() string {
	return `SELECT ` + propertyColumns + ` FROM properties p`
}

func baseSelectListing() string {
	return `SELECT ` + propertyColumns + `, u.username FROM properties p JOIN users u ON u.id = p.owner_id`
}

func propertyScanTargets(p *models.Property) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.CategoryID, &p.Title, &p.Description, &p.Address, &p.City, &p.Country,
		&p.PricePerNight, &p.MaxGuests, &p.Bedrooms, &p.Bathrooms, &p.MainImage, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	}
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(propertyScanTargets(&p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanListing(row pgx.Row, withRank bool) (*models.PropertyListing, error) {
	var l models.PropertyListing
	targets := append(propertyScanTargets(&l.Property), &l.OwnerUsername)
	if withRank {
		targets = append(targets, &l.Rank)
	}
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &l, nil
}
