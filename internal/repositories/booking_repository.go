package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
)

type BookingRepository interface {
	// Create and Update lock the parent property row, re-run the overlap
	// check and write, all in one transaction. An overlap found by the
	// check or by the bookings_no_overlap constraint is reported as
	// utils.ErrBookingConflict; a missing property as pgx.ErrNoRows.
	Create(ctx context.Context, b *models.Booking) error
	Update(ctx context.Context, b *models.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*models.Booking, int, error)
	// HasOverlap reports whether any booking on the property intersects
	// [start, end). excludeID, when set, is left out of the comparison.
	HasOverlap(ctx context.Context, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	ListBookedRanges(ctx context.Context, propertyID uuid.UUID) ([]models.DateRange, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingRepo struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, b *models.Booking) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockPropertyAndCheck(ctx, tx, b.PropertyID, b.StartDate, b.EndDate, nil); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
            INSERT INTO bookings (id, property_id, guest_id, start_date, end_date, total_price, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW())
            RETURNING created_at, updated_at
        `,
			b.ID, b.PropertyID, b.GuestID, b.StartDate, b.EndDate, b.TotalPrice,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
	})
	return mapBookingWriteError(err)
}

func (r *bookingRepo) Update(ctx context.Context, b *models.Booking) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockPropertyAndCheck(ctx, tx, b.PropertyID, b.StartDate, b.EndDate, &b.ID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
            UPDATE bookings SET start_date=$1, end_date=$2, total_price=$3, updated_at=NOW()
            WHERE id=$4
            RETURNING updated_at
        `, b.StartDate, b.EndDate, b.TotalPrice, b.ID).Scan(&b.UpdatedAt)
	})
	return mapBookingWriteError(err)
}

// lockPropertyAndCheck serializes booking writes per property. Two
// concurrent requests for the same property queue on the row lock, so the
// second one sees the first one's booking in its overlap check.
func lockPropertyAndCheck(ctx context.Context, tx pgx.Tx, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM properties WHERE id=$1 FOR UPDATE`, propertyID).Scan(&locked); err != nil {
		return err
	}
	overlap, err := hasOverlap(ctx, tx, propertyID, start, end, excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return utils.ErrBookingConflict
	}
	return nil
}

func (r *bookingRepo) HasOverlap(ctx context.Context, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	return hasOverlap(ctx, r.db, propertyID, start, end, excludeID)
}

func hasOverlap(ctx context.Context, db DB, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE property_id=$1
              AND start_date < $3
              AND end_date > $2
              AND ($4::uuid IS NULL OR id <> $4::uuid)
        )
    `, propertyID, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, baseSelectBooking()+" WHERE id=$1", id))
}

func (r *bookingRepo) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*models.Booking, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE guest_id=$1`, guestID).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := pageClause(2, limit, offset, []any{guestID})
	rows, err := r.db.Query(ctx, baseSelectBooking()+" WHERE guest_id=$1 ORDER BY created_at DESC"+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *bookingRepo) ListBookedRanges(ctx context.Context, propertyID uuid.UUID) ([]models.DateRange, error) {
	rows, err := r.db.Query(ctx, `
        SELECT start_date, end_date FROM bookings
        WHERE property_id=$1
        ORDER BY start_date
    `, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DateRange
	for rows.Next() {
		var dr models.DateRange
		if err := rows.Scan(&dr.Start, &dr.End); err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

func (r *bookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func mapBookingWriteError(err error) error {
	if isExclusionViolation(err) {
		return utils.ErrBookingConflict
	}
	return err
}

func baseSelectBooking() string {
	return `
        SELECT id, property_id, guest_id, start_date, end_date, total_price, created_at, updated_at
        FROM bookings`
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.PropertyID, &b.GuestID, &b.StartDate, &b.EndDate, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
