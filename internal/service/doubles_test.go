package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/media"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

// --- Place repository double ---

type memoryPlaceRepository struct {
	places map[uuid.UUID]*domain.Place
}

func newMemoryPlaceRepository() *memoryPlaceRepository {
	return &memoryPlaceRepository{places: make(map[uuid.UUID]*domain.Place)}
}

func (m *memoryPlaceRepository) Create(_ context.Context, place *domain.Place) (*domain.Place, error) {
	for _, existing := range m.places {
		if existing.Name == place.Name {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now().UTC()
	cloned := *place
	cloned.ID = uuid.New()
	cloned.CreatedAt = now
	cloned.UpdatedAt = now
	m.places[cloned.ID] = &cloned
	copied := cloned
	return &copied, nil
}

func (m *memoryPlaceRepository) Update(_ context.Context, id uuid.UUID, fields domain.PlaceFields) (*domain.Place, error) {
	place, ok := m.places[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fields.Name != nil {
		place.Name = *fields.Name
	}
	if fields.Description != nil {
		place.Description = *fields.Description
	}
	if fields.Address != nil {
		place.Address = *fields.Address
	}
	if fields.TravelStyles != nil {
		place.TravelStyles = fields.TravelStyles
	}
	if fields.Images != nil {
		place.Images = fields.Images
	}
	if fields.TopAttractions != nil {
		place.TopAttractions = fields.TopAttractions
	}
	if fields.ThingsToDo != nil {
		place.ThingsToDo = fields.ThingsToDo
	}
	if fields.Longitude != nil {
		place.Longitude = *fields.Longitude
	}
	if fields.Latitude != nil {
		place.Latitude = *fields.Latitude
	}
	place.UpdatedAt = time.Now().UTC()
	cloned := *place
	return &cloned, nil
}

func (m *memoryPlaceRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.places[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.places, id)
	return nil
}

func (m *memoryPlaceRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Place, error) {
	place, ok := m.places[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *place
	return &cloned, nil
}

func (m *memoryPlaceRepository) List(_ context.Context, travelStyle string) ([]domain.Place, error) {
	items := make([]domain.Place, 0)
	for _, place := range m.places {
		if travelStyle != "" && !containsStyle(place.TravelStyles, travelStyle) {
			continue
		}
		items = append(items, *place)
	}
	return items, nil
}

func (m *memoryPlaceRepository) Search(_ context.Context, query string) ([]domain.Place, error) {
	needle := strings.ToLower(query)
	items, _ := m.List(context.Background(), "")
	matched := make([]domain.Place, 0, len(items))
	for _, place := range items {
		if strings.Contains(strings.ToLower(place.Name), needle) ||
			strings.Contains(strings.ToLower(place.Description), needle) {
			matched = append(matched, place)
		}
	}
	return matched, nil
}

func (m *memoryPlaceRepository) TopRated(_ context.Context, limit int) ([]domain.Place, error) {
	items, _ := m.List(context.Background(), "")
	sort.Slice(items, func(i, j int) bool { return items[i].AverageRating > items[j].AverageRating })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memoryPlaceRepository) Nearby(_ context.Context, _, _ float64, _ int) ([]domain.Place, error) {
	return m.List(context.Background(), "")
}

func (m *memoryPlaceRepository) Recommended(_ context.Context, excludeID uuid.UUID, travelStyles []string, limit int) ([]domain.Place, error) {
	items := make([]domain.Place, 0)
	for _, place := range m.places {
		if place.ID == excludeID {
			continue
		}
		shared := false
		for _, style := range travelStyles {
			if containsStyle(place.TravelStyles, style) {
				shared = true
				break
			}
		}
		if shared {
			items = append(items, *place)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AverageRating > items[j].AverageRating })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memoryPlaceRepository) UpdateRating(_ context.Context, id uuid.UUID, averageRating float64, reviewCount int) error {
	place, ok := m.places[id]
	if !ok {
		return sql.ErrNoRows
	}
	place.AverageRating = averageRating
	place.ReviewCount = reviewCount
	return nil
}

func containsStyle(styles []string, style string) bool {
	for _, s := range styles {
		if s == style {
			return true
		}
	}
	return false
}

// --- Review repository double ---

type memoryReviewRepository struct {
	reviews map[uuid.UUID]*domain.Review
}

func newMemoryReviewRepository() *memoryReviewRepository {
	return &memoryReviewRepository{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (m *memoryReviewRepository) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	now := time.Now().UTC()
	cloned := *review
	cloned.ID = uuid.New()
	cloned.CreatedAt = now
	cloned.UpdatedAt = now
	m.reviews[cloned.ID] = &cloned
	copied := cloned
	return &copied, nil
}

func (m *memoryReviewRepository) Update(_ context.Context, id uuid.UUID, rating *int, comment *string) (*domain.Review, error) {
	review, ok := m.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if rating != nil {
		review.Rating = *rating
	}
	if comment != nil {
		review.Comment = *comment
	}
	review.UpdatedAt = time.Now().UTC()
	cloned := *review
	return &cloned, nil
}

func (m *memoryReviewRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.reviews[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.reviews, id)
	return nil
}

func (m *memoryReviewRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Review, error) {
	review, ok := m.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *review
	return &cloned, nil
}

func (m *memoryReviewRepository) ListByPlace(_ context.Context, placeID uuid.UUID) ([]domain.Review, error) {
	items := make([]domain.Review, 0)
	for _, review := range m.reviews {
		if review.PlaceID == placeID {
			items = append(items, *review)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m *memoryReviewRepository) AggregateByPlace(_ context.Context, placeID uuid.UUID) (*domain.ReviewAggregate, error) {
	count := 0
	sum := 0
	for _, review := range m.reviews {
		if review.PlaceID == placeID {
			count++
			sum += review.Rating
		}
	}
	avg := 0.0
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	return &domain.ReviewAggregate{PlaceID: placeID, AverageRating: avg, ReviewCount: count}, nil
}

// --- Package repository double ---

type memoryPackageRepository struct {
	packages map[uuid.UUID]*domain.TravelPackage
}

func newMemoryPackageRepository() *memoryPackageRepository {
	return &memoryPackageRepository{packages: make(map[uuid.UUID]*domain.TravelPackage)}
}

func (m *memoryPackageRepository) Create(_ context.Context, pkg *domain.TravelPackage) (*domain.TravelPackage, error) {
	now := time.Now().UTC()
	cloned := *pkg
	cloned.ID = uuid.New()
	cloned.CreatedAt = now
	cloned.UpdatedAt = now
	m.packages[cloned.ID] = &cloned
	copied := cloned
	return &copied, nil
}

func (m *memoryPackageRepository) Update(_ context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.TravelPackage, error) {
	pkg, ok := m.packages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fields.Title != nil {
		pkg.Title = *fields.Title
	}
	if fields.Description != nil {
		pkg.Description = *fields.Description
	}
	if fields.Price != nil {
		pkg.Price = *fields.Price
	}
	if fields.Duration != nil {
		pkg.Duration = *fields.Duration
	}
	if fields.Image != nil {
		pkg.Image = fields.Image
	}
	cloned := *pkg
	return &cloned, nil
}

func (m *memoryPackageRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.packages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.packages, id)
	return nil
}

func (m *memoryPackageRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.TravelPackage, error) {
	pkg, ok := m.packages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *pkg
	return &cloned, nil
}

func (m *memoryPackageRepository) List(_ context.Context) ([]domain.TravelPackage, error) {
	items := make([]domain.TravelPackage, 0, len(m.packages))
	for _, pkg := range m.packages {
		items = append(items, *pkg)
	}
	return items, nil
}

func (m *memoryPackageRepository) IncrementBookings(_ context.Context, id uuid.UUID, delta int) error {
	pkg, ok := m.packages[id]
	if !ok {
		return sql.ErrNoRows
	}
	pkg.BookingsCount += delta
	if pkg.BookingsCount < 0 {
		pkg.BookingsCount = 0
	}
	return nil
}

// --- Booking repository double ---

type memoryBookingRepository struct {
	bookings map[uuid.UUID]*domain.Booking
	packages *memoryPackageRepository
}

func newMemoryBookingRepository(packages *memoryPackageRepository) *memoryBookingRepository {
	return &memoryBookingRepository{
		bookings: make(map[uuid.UUID]*domain.Booking),
		packages: packages,
	}
}

func (m *memoryBookingRepository) populate(booking domain.Booking) domain.Booking {
	if pkg, ok := m.packages.packages[booking.PackageID]; ok {
		booking.PackageTitle = &pkg.Title
		booking.PackagePrice = &pkg.Price
		booking.PackageDuration = &pkg.Duration
		booking.PackageCreatedBy = pkg.CreatedBy
	}
	return booking
}

func (m *memoryBookingRepository) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	for _, existing := range m.bookings {
		if existing.ExternalID == booking.ExternalID {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now().UTC()
	cloned := *booking
	cloned.ID = uuid.New()
	cloned.CreatedAt = now
	cloned.UpdatedAt = now
	m.bookings[cloned.ID] = &cloned
	populated := m.populate(cloned)
	return &populated, nil
}

func (m *memoryBookingRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	populated := m.populate(*booking)
	return &populated, nil
}

func (m *memoryBookingRepository) GetByExternalID(_ context.Context, externalID string) (*domain.Booking, error) {
	for _, booking := range m.bookings {
		if booking.ExternalID == externalID {
			populated := m.populate(*booking)
			return &populated, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryBookingRepository) ListAll(_ context.Context) ([]domain.Booking, error) {
	items := make([]domain.Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		items = append(items, m.populate(*booking))
	}
	return items, nil
}

func (m *memoryBookingRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	items := make([]domain.Booking, 0)
	for _, booking := range m.bookings {
		if booking.UserID == userID {
			items = append(items, m.populate(*booking))
		}
	}
	return items, nil
}

func (m *memoryBookingRepository) ListByAgency(_ context.Context, agencyID uuid.UUID) ([]domain.Booking, error) {
	items := make([]domain.Booking, 0)
	for _, booking := range m.bookings {
		populated := m.populate(*booking)
		if populated.PackageCreatedBy == agencyID {
			items = append(items, populated)
		}
	}
	return items, nil
}

func (m *memoryBookingRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()
	populated := m.populate(*booking)
	return &populated, nil
}

func (m *memoryBookingRepository) MarkPaid(_ context.Context, externalID string, transactionID, method string) (*domain.Booking, error) {
	for _, booking := range m.bookings {
		if booking.ExternalID == externalID {
			now := time.Now().UTC()
			booking.Status = domain.BookingStatusPaid
			booking.TransactionID = &transactionID
			booking.PaymentMethod = &method
			booking.PaidAt = &now
			populated := m.populate(*booking)
			return &populated, nil
		}
	}
	return nil, sql.ErrNoRows
}

// --- User repository double ---

type memoryUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memoryUserRepository) addUser(user domain.User) domain.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = &user
	return user
}

func (m *memoryUserRepository) CreateEmailUser(_ context.Context, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	for _, existing := range m.users {
		if existing.Email == email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	user := m.addUser(domain.User{
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    time.Now().UTC(),
	})
	return &user, nil
}

func (m *memoryUserRepository) UpsertGoogleUser(_ context.Context, email string, name *string, imageURL *string) (*domain.User, error) {
	for _, existing := range m.users {
		if existing.Email == email {
			if name != nil {
				existing.Name = name
			}
			if imageURL != nil {
				existing.ImageURL = imageURL
			}
			cloned := *existing
			return &cloned, nil
		}
	}
	user := m.addUser(domain.User{Email: email, Name: name, ImageURL: imageURL, Role: domain.RoleUser})
	return &user, nil
}

func (m *memoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cloned := *user
			return &cloned, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *user
	return &cloned, nil
}

func (m *memoryUserRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	items := make([]domain.User, 0)
	for _, user := range m.users {
		if user.Role == role {
			items = append(items, *user)
		}
	}
	return items, nil
}

// --- Notification repository double ---

type memoryNotificationRepository struct {
	notifications []domain.Notification
}

func newMemoryNotificationRepository() *memoryNotificationRepository {
	return &memoryNotificationRepository{}
}

func (m *memoryNotificationRepository) CreateMany(_ context.Context, notifications []domain.Notification) error {
	for _, n := range notifications {
		n.ID = uuid.New()
		n.CreatedAt = time.Now().UTC()
		m.notifications = append(m.notifications, n)
	}
	return nil
}

func (m *memoryNotificationRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	items := make([]domain.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID {
			items = append(items, n)
		}
	}
	return items, nil
}

func (m *memoryNotificationRepository) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications[i].Read = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryNotificationRepository) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].Read = true
		}
	}
	return nil
}

// --- Blog repository double ---

type memoryBlogRepository struct {
	blogs map[uuid.UUID]*domain.Blog
}

func newMemoryBlogRepository() *memoryBlogRepository {
	return &memoryBlogRepository{blogs: make(map[uuid.UUID]*domain.Blog)}
}

func (m *memoryBlogRepository) Create(_ context.Context, blog *domain.Blog) (*domain.Blog, error) {
	now := time.Now().UTC()
	cloned := *blog
	cloned.ID = uuid.New()
	cloned.CreatedAt = now
	cloned.UpdatedAt = now
	m.blogs[cloned.ID] = &cloned
	copied := cloned
	return &copied, nil
}

func (m *memoryBlogRepository) Update(_ context.Context, id uuid.UUID, fields domain.BlogFields, status *domain.BlogStatus) (*domain.Blog, error) {
	blog, ok := m.blogs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fields.Title != nil {
		blog.Title = *fields.Title
	}
	if fields.Body != nil {
		blog.Body = *fields.Body
	}
	if fields.Summary != nil {
		blog.Summary = fields.Summary
	}
	if fields.Image != nil {
		blog.Image = *fields.Image
	}
	if status != nil {
		blog.Status = *status
	}
	blog.UpdatedAt = time.Now().UTC()
	cloned := *blog
	return &cloned, nil
}

func (m *memoryBlogRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.blogs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.blogs, id)
	return nil
}

func (m *memoryBlogRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Blog, error) {
	blog, ok := m.blogs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *blog
	return &cloned, nil
}

func (m *memoryBlogRepository) List(_ context.Context) ([]domain.Blog, error) {
	items := make([]domain.Blog, 0, len(m.blogs))
	for _, blog := range m.blogs {
		items = append(items, *blog)
	}
	return items, nil
}

func (m *memoryBlogRepository) SetStatus(_ context.Context, id uuid.UUID, status domain.BlogStatus) (*domain.Blog, error) {
	blog, ok := m.blogs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	blog.Status = status
	cloned := *blog
	return &cloned, nil
}

// --- Collaborator stubs ---

type stubStorage struct {
	uploads  int
	lastKey  string
	lastData []byte
}

func (s *stubStorage) Upload(_ context.Context, bucket, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.uploads++
	s.lastKey = objectName
	s.lastData = data
	return fmt.Sprintf("https://cdn.test/%s/%s", bucket, objectName), nil
}

type stubImageProcessor struct {
	output []byte
	calls  int
}

func (s *stubImageProcessor) Process(_ context.Context, upload media.Upload, _ int) (*media.Result, error) {
	s.calls++
	out := s.output
	if out == nil {
		var err error
		out, err = io.ReadAll(upload.Reader)
		if err != nil {
			return nil, err
		}
	}
	return &media.Result{Bytes: out, ContentType: upload.ContentType}, nil
}

type stubGeocoder struct {
	coords *ports.Coordinates
	err    error
	calls  int
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string) (*ports.Coordinates, error) {
	s.calls++
	return s.coords, s.err
}

type stubWeather struct {
	report *ports.WeatherReport
	err    error
}

func (s *stubWeather) Current(_ context.Context, _, _ float64) (*ports.WeatherReport, error) {
	return s.report, s.err
}

var (
	_ ports.PlaceRepository        = (*memoryPlaceRepository)(nil)
	_ ports.ReviewRepository       = (*memoryReviewRepository)(nil)
	_ ports.PackageRepository      = (*memoryPackageRepository)(nil)
	_ ports.BookingRepository      = (*memoryBookingRepository)(nil)
	_ ports.UserRepository         = (*memoryUserRepository)(nil)
	_ ports.NotificationRepository = (*memoryNotificationRepository)(nil)
	_ ports.BlogRepository         = (*memoryBlogRepository)(nil)
	_ ports.ObjectStorage          = (*stubStorage)(nil)
	_ media.Processor              = (*stubImageProcessor)(nil)
	_ ports.Geocoder               = (*stubGeocoder)(nil)
	_ ports.WeatherProvider        = (*stubWeather)(nil)
)
