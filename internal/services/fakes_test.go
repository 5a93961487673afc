package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
)

/* ------------------------------------------------------------------
   In-memory repositories used by the service tests
------------------------------------------------------------------ */

type fakeBookings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Booking
	// props lets Create report a missing property like the real repo.
	props *fakeProperties
}

func newFakeBookings(props *fakeProperties) *fakeBookings {
	return &fakeBookings{rows: map[uuid.UUID]*models.Booking{}, props: props}
}

func (f *fakeBookings) overlapLocked(propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	for _, b := range f.rows {
		if b.PropertyID != propertyID || (excludeID != nil && b.ID == *excludeID) {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (f *fakeBookings) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.props != nil && !f.props.has(b.PropertyID) {
		return pgx.ErrNoRows
	}
	if f.overlapLocked(b.PropertyID, b.StartDate, b.EndDate, nil) {
		return utils.ErrBookingConflict
	}
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBookings) Update(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overlapLocked(b.PropertyID, b.StartDate, b.EndDate, &b.ID) {
		return utils.ErrBookingConflict
	}
	if _, ok := f.rows[b.ID]; !ok {
		return pgx.ErrNoRows
	}
	b.UpdatedAt = time.Now()
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListByGuest(_ context.Context, guestID uuid.UUID, limit, offset int) ([]*models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.rows {
		if b.GuestID == guestID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return window(out, limit, offset), len(out), nil
}

func (f *fakeBookings) HasOverlap(_ context.Context, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlapLocked(propertyID, start, end, excludeID), nil
}

func (f *fakeBookings) ListBookedRanges(_ context.Context, propertyID uuid.UUID) ([]models.DateRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DateRange
	for _, b := range f.rows {
		if b.PropertyID == propertyID {
			out = append(out, models.DateRange{Start: b.StartDate, End: b.EndDate})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeBookings) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeProperties struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Property
	amenities map[uuid.UUID][]uuid.UUID
	// searchResults is returned verbatim by Search.
	searchResults []*models.PropertyListing
	searchCalls   int
	refreshed     int64
	// knownAmenity plays the property_amenities foreign key when set.
	knownAmenity func(uuid.UUID) bool
}

func newFakeProperties() *fakeProperties {
	return &fakeProperties{rows: map[uuid.UUID]*models.Property{}, amenities: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakeProperties) has(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok
}

func (f *fakeProperties) put(p *models.Property) *models.Property {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.RowVersion == 0 {
		p.RowVersion = 1
	}
	cp := *p
	f.rows[p.ID] = &cp
	return p
}

func (f *fakeProperties) Create(_ context.Context, p *models.Property, amenityIDs []uuid.UUID) error {
	f.mu.Lock()
	err := f.checkAmenitiesLocked(amenityIDs)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.put(p)
	f.mu.Lock()
	f.amenities[p.ID] = amenityIDs
	f.mu.Unlock()
	return nil
}

func (f *fakeProperties) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProperties) ListActive(_ context.Context, flt models.PropertyFilter) ([]*models.PropertyListing, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PropertyListing
	for _, p := range f.rows {
		if !p.IsActive {
			continue
		}
		if flt.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(flt.City)) {
			continue
		}
		out = append(out, &models.PropertyListing{Property: *p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return window(out, flt.Limit, flt.Offset), len(out), nil
}

func (f *fakeProperties) Search(_ context.Context, _ string, limit int) ([]*models.PropertyListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return window(f.searchResults, limit, 0), nil
}

// checkAmenitiesLocked fails the way the amenity foreign key does.
func (f *fakeProperties) checkAmenitiesLocked(amenityIDs []uuid.UUID) error {
	if f.knownAmenity == nil {
		return nil
	}
	for _, id := range amenityIDs {
		if !f.knownAmenity(id) {
			return &pgconn.PgError{Code: "23503", ConstraintName: "property_amenities_amenity_id_fkey"}
		}
	}
	return nil
}

func (f *fakeProperties) UpdateIfVersion(
	_ context.Context,
	p *models.Property,
	expected int64,
	amenityIDs *[]uuid.UUID,
) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[p.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	if amenityIDs != nil {
		if err := f.checkAmenitiesLocked(*amenityIDs); err != nil {
			return nil, err
		}
		f.amenities[p.ID] = *amenityIDs
	}
	cp := *p
	cp.RowVersion = expected + 1
	f.rows[p.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (f *fakeProperties) UpdateWithRetry(
	ctx context.Context,
	id uuid.UUID,
	amenityIDs *[]uuid.UUID,
	mutate func(*models.Property) error,
) error {
	cur, _ := f.GetByID(ctx, id)
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	tag, err := f.UpdateIfVersion(ctx, cur, cur.RowVersion, amenityIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return utils.ErrRowVersionConflict
	}
	return nil
}

func (f *fakeProperties) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeProperties) RefreshSearchVectors(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = int64(len(f.rows))
	return f.refreshed, nil
}

type fakeUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) add(username string) *models.User {
	u := &models.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	u.RowVersion = 1
	f.mu.Lock()
	f.rows[u.ID] = u
	f.mu.Unlock()
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Username == u.Username {
			return utils.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return utils.ErrEmailExists
		}
	}
	u.RowVersion = 1
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UpdateIfVersion(_ context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[u.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *u
	cp.RowVersion = expected + 1
	f.rows[u.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (f *fakeUsers) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	cur, _ := f.GetByID(ctx, id)
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err := f.UpdateIfVersion(ctx, cur, cur.RowVersion)
	return err
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeUsers) Counts(context.Context, uuid.UUID) (int, int, error) {
	return 0, 0, nil
}

type fakeReviews struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*models.ReviewWithAuthor
	users *fakeUsers
}

func newFakeReviews(users *fakeUsers) *fakeReviews {
	return &fakeReviews{rows: map[uuid.UUID]*models.ReviewWithAuthor{}, users: users}
}

func (f *fakeReviews) Create(_ context.Context, rv *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.PropertyID == rv.PropertyID && r.AuthorID == rv.AuthorID {
			return utils.ErrDuplicateReview
		}
	}
	author, _ := f.users.GetByID(context.Background(), rv.AuthorID)
	if author == nil {
		return &pgconn.PgError{Code: "23503", ConstraintName: "reviews_author_id_fkey"}
	}
	rv.CreatedAt, rv.UpdatedAt = time.Now(), time.Now()
	row := &models.ReviewWithAuthor{Review: *rv, AuthorUsername: author.Username}
	f.rows[rv.ID] = row
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, id uuid.UUID) (*models.ReviewWithAuthor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviews) Exists(_ context.Context, propertyID, authorID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.PropertyID == propertyID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) List(_ context.Context, propertyID *uuid.UUID, limit, offset int) ([]*models.ReviewWithAuthor, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ReviewWithAuthor
	for _, r := range f.rows {
		if propertyID == nil || r.PropertyID == *propertyID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return window(out, limit, offset), len(out), nil
}

func (f *fakeReviews) Summary(_ context.Context, propertyID uuid.UUID) (models.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s models.RatingSummary
	var sum int
	for _, r := range f.rows {
		if r.PropertyID == propertyID {
			s.Count++
			sum += r.Rating
		}
	}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s, nil
}

func (f *fakeReviews) Update(_ context.Context, rv *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[rv.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	r.Rating, r.Comment = rv.Rating, rv.Comment
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeCategories struct {
	rows  map[uuid.UUID]*models.Category
	lists int
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{rows: map[uuid.UUID]*models.Category{}}
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	for _, existing := range f.rows {
		if existing.Slug == c.Slug {
			return utils.ErrDuplicateSlug
		}
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) List(context.Context) ([]*models.Category, error) {
	f.lists++
	var out []*models.Category
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	if _, ok := f.rows[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeAmenities struct {
	rows map[uuid.UUID]*models.Amenity
}

func (f *fakeAmenities) has(id uuid.UUID) bool {
	_, ok := f.rows[id]
	return ok
}

func newFakeAmenities() *fakeAmenities {
	return &fakeAmenities{rows: map[uuid.UUID]*models.Amenity{}}
}

func (f *fakeAmenities) Create(_ context.Context, a *models.Amenity) error {
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAmenities) GetByID(_ context.Context, id uuid.UUID) (*models.Amenity, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeAmenities) List(context.Context) ([]*models.Amenity, error) {
	var out []*models.Amenity
	for _, a := range f.rows {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAmenities) ListByProperty(context.Context, uuid.UUID) ([]*models.Amenity, error) {
	return nil, nil
}

func (f *fakeAmenities) Update(_ context.Context, a *models.Amenity) error {
	if _, ok := f.rows[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAmenities) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeImages struct {
	rows map[uuid.UUID]*models.PropertyImage
}

func newFakeImages() *fakeImages {
	return &fakeImages{rows: map[uuid.UUID]*models.PropertyImage{}}
}

func (f *fakeImages) Create(_ context.Context, img *models.PropertyImage) error {
	img.CreatedAt = time.Now()
	cp := *img
	f.rows[img.ID] = &cp
	return nil
}

func (f *fakeImages) GetByID(_ context.Context, id uuid.UUID) (*models.PropertyImage, error) {
	img, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return img, nil
}

func (f *fakeImages) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*models.PropertyImage, error) {
	var out []*models.PropertyImage
	for _, img := range f.rows {
		if img.PropertyID == propertyID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImages) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeUserAccounts struct {
	rows     map[uuid.UUID]*models.UserAccountWithCreator
	users    *fakeUsers
	lastList models.UserAccountFilter
}

func newFakeUserAccounts(users *fakeUsers) *fakeUserAccounts {
	return &fakeUserAccounts{rows: map[uuid.UUID]*models.UserAccountWithCreator{}, users: users}
}

func (f *fakeUserAccounts) Create(_ context.Context, ua *models.UserAccount) error {
	for _, existing := range f.rows {
		if existing.UserAccountID == ua.UserAccountID {
			return utils.ErrUserAccountIDExists
		}
	}
	ua.CreatedAt = time.Now()
	row := &models.UserAccountWithCreator{UserAccount: *ua}
	if u, ok := f.users.rows[ua.CreatorID]; ok {
		row.CreatorUsername = u.Username
	}
	f.rows[ua.ID] = row
	return nil
}

func (f *fakeUserAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.UserAccountWithCreator, error) {
	ua, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *ua
	return &cp, nil
}

func (f *fakeUserAccounts) List(_ context.Context, flt models.UserAccountFilter) ([]*models.UserAccountWithCreator, int, error) {
	f.lastList = flt
	var out []*models.UserAccountWithCreator
	for _, ua := range f.rows {
		if flt.CreatorID != nil && ua.CreatorID != *flt.CreatorID {
			continue
		}
		cp := *ua
		out = append(out, &cp)
	}
	return window(out, flt.Limit, flt.Offset), len(out), nil
}

func (f *fakeUserAccounts) Update(_ context.Context, ua *models.UserAccount) error {
	row, ok := f.rows[ua.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	row.UserAccount = *ua
	return nil
}

func (f *fakeUserAccounts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

func window[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

/* ------------------------------------------------------------------
   Cache and notifier doubles
------------------------------------------------------------------ */

type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	cleared []string
}

func newMemStore() *memStore {
	return &memStore{entries: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
}

func (m *memStore) DeletePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, prefix)
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []BookingNotice
}

func (r *recordingNotifier) BookingConfirmed(_ context.Context, n BookingNotice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}
