package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/media"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

var (
	ErrPlaceValidation    = errors.New("place validation failed")
	ErrPlaceAlreadyExist  = errors.New("place with this name already exists")
	ErrPlaceNotFound      = errors.New("place not found")
	ErrWeatherUnavailable = errors.New("weather unavailable")
)

const (
	recommendedLimit       = 5
	defaultNearbyDistanceM = 5000
	defaultTopRatedLimit   = 5
)

type PlaceServiceConfig struct {
	Bucket            string
	MaxImageBytes     int64
	ImageProcessor    media.Processor
	ImageMaxDimension int
	Logger            *log.Logger
}

type AttractionInput struct {
	Name  string
	Image *ImageUpload
}

type ThingToDoInput struct {
	Title       string
	Description string
	Image       *ImageUpload
}

type PlaceCreateInput struct {
	Name           string
	Description    string
	Address        string
	TravelStyles   []string
	Images         []ImageUpload
	TopAttractions []AttractionInput
	ThingsToDo     []ThingToDoInput
}

// PlaceUpdateInput carries a partial update. Nil pointer fields stay
// unchanged; a non-empty Images slice replaces the stored gallery wholesale,
// otherwise ExistingImages (when non-nil) becomes the new gallery.
type PlaceUpdateInput struct {
	Name           *string
	Description    *string
	Address        *string
	TravelStyles   []string
	Images         []ImageUpload
	ExistingImages []string
	TopAttractions []AttractionInput
	ThingsToDo     []ThingToDoInput
}

type PlaceService struct {
	places  ports.PlaceRepository
	reviews ports.ReviewRepository
	storage ports.ObjectStorage
	geo     ports.Geocoder
	weather ports.WeatherProvider

	bucket            string
	maxImageBytes     int64
	imageProcessor    media.Processor
	imageMaxDimension int
	logger            *log.Logger
	now               func() time.Time
}

func NewPlaceService(
	places ports.PlaceRepository,
	reviews ports.ReviewRepository,
	storage ports.ObjectStorage,
	geo ports.Geocoder,
	weather ports.WeatherProvider,
	cfg PlaceServiceConfig,
) *PlaceService {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = int64(5 * 1024 * 1024)
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}
	return &PlaceService{
		places:            places,
		reviews:           reviews,
		storage:           storage,
		geo:               geo,
		weather:           weather,
		bucket:            strings.TrimSpace(cfg.Bucket),
		maxImageBytes:     maxBytes,
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *PlaceService) CreatePlace(ctx context.Context, input PlaceCreateInput) (*domain.Place, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrPlaceValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrPlaceValidation)
	}
	styles, err := normalizeTravelStyles(input.TravelStyles)
	if err != nil {
		return nil, err
	}
	if err = s.validateUploads(input.Images); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(input.Address)
	lng, lat := s.resolveCoordinates(ctx, address)

	placeID := uuid.New()
	images, err := s.uploadGallery(ctx, placeID, input.Images)
	if err != nil {
		return nil, err
	}
	attractions, err := s.buildAttractions(ctx, placeID, input.TopAttractions)
	if err != nil {
		return nil, err
	}
	thingsToDo, err := s.buildThingsToDo(ctx, placeID, input.ThingsToDo)
	if err != nil {
		return nil, err
	}

	place := &domain.Place{
		Name:           name,
		Description:    description,
		Address:        address,
		TravelStyles:   styles,
		Images:         images,
		TopAttractions: attractions,
		ThingsToDo:     thingsToDo,
		Longitude:      lng,
		Latitude:       lat,
	}

	created, err := s.places.Create(ctx, place)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPlaceAlreadyExist
		}
		return nil, err
	}
	return created, nil
}

// GetPlace returns the detail projection: the place with its rating pair
// recomputed live from the reviews, the reviews themselves, and up to five
// best-rated places sharing a travel style.
func (s *PlaceService) GetPlace(ctx context.Context, id uuid.UUID) (*domain.PlaceDetail, error) {
	place, err := s.places.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	reviews, err := s.reviews.ListByPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	aggregate, err := s.reviews.AggregateByPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	place.AverageRating = aggregate.AverageRating
	place.ReviewCount = aggregate.ReviewCount

	recommended, err := s.places.Recommended(ctx, id, place.TravelStyles, recommendedLimit)
	if err != nil {
		return nil, err
	}

	return &domain.PlaceDetail{
		Place:       *place,
		Reviews:     reviews,
		Recommended: recommended,
	}, nil
}

func (s *PlaceService) ListPlaces(ctx context.Context, travelStyle string) ([]domain.Place, error) {
	trimmed := strings.TrimSpace(travelStyle)
	if trimmed != "" && !domain.ValidTravelStyle(trimmed) {
		return nil, fmt.Errorf("%w: unknown travel style %q", ErrPlaceValidation, trimmed)
	}
	return s.places.List(ctx, trimmed)
}

func (s *PlaceService) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrPlaceValidation)
	}
	return s.places.Search(ctx, trimmed)
}

func (s *PlaceService) TopRatedPlaces(ctx context.Context, limit int) ([]domain.Place, error) {
	if limit <= 0 {
		limit = defaultTopRatedLimit
	}
	if limit > 50 {
		limit = 50
	}
	return s.places.TopRated(ctx, limit)
}

func (s *PlaceService) NearbyPlaces(ctx context.Context, lng, lat float64, maxDistanceMeters int) ([]domain.Place, error) {
	if maxDistanceMeters <= 0 {
		maxDistanceMeters = defaultNearbyDistanceM
	}
	return s.places.Nearby(ctx, lng, lat, maxDistanceMeters)
}

func (s *PlaceService) UpdatePlace(ctx context.Context, id uuid.UUID, input PlaceUpdateInput) (*domain.Place, error) {
	if _, err := s.places.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	fields := domain.PlaceFields{
		Name:        normalizeString(input.Name),
		Description: normalizeString(input.Description),
	}

	if input.TravelStyles != nil {
		styles, err := normalizeTravelStyles(input.TravelStyles)
		if err != nil {
			return nil, err
		}
		fields.TravelStyles = styles
	}

	if address := normalizeString(input.Address); address != nil {
		fields.Address = address
		lng, lat := s.resolveCoordinates(ctx, *address)
		fields.Longitude = &lng
		fields.Latitude = &lat
	}

	if len(input.Images) > 0 {
		if err := s.validateUploads(input.Images); err != nil {
			return nil, err
		}
		images, err := s.uploadGallery(ctx, id, input.Images)
		if err != nil {
			return nil, err
		}
		fields.Images = images
	} else if input.ExistingImages != nil {
		fields.Images = input.ExistingImages
	}

	if input.TopAttractions != nil {
		attractions, err := s.buildAttractions(ctx, id, input.TopAttractions)
		if err != nil {
			return nil, err
		}
		fields.TopAttractions = attractions
	}
	if input.ThingsToDo != nil {
		thingsToDo, err := s.buildThingsToDo(ctx, id, input.ThingsToDo)
		if err != nil {
			return nil, err
		}
		fields.ThingsToDo = thingsToDo
	}

	updated, err := s.places.Update(ctx, id, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrPlaceAlreadyExist
		}
		return nil, err
	}
	return updated, nil
}

func (s *PlaceService) DeletePlace(ctx context.Context, id uuid.UUID) error {
	if err := s.places.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrPlaceNotFound
		}
		return err
	}
	return nil
}

func (s *PlaceService) PlaceWeather(ctx context.Context, id uuid.UUID) (*ports.WeatherReport, error) {
	place, err := s.places.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	report, err := s.weather.Current(ctx, place.Longitude, place.Latitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	return report, nil
}

// resolveCoordinates geocodes the address, falling back to the origin when
// the address is blank, unresolvable, or the geocoder is unavailable.
func (s *PlaceService) resolveCoordinates(ctx context.Context, address string) (float64, float64) {
	if address == "" || s.geo == nil {
		return 0, 0
	}
	coords, err := s.geo.Geocode(ctx, address)
	if err != nil {
		s.logger.Printf("geocode %q failed: %v", address, err)
		return 0, 0
	}
	if coords == nil {
		return 0, 0
	}
	return coords.Longitude, coords.Latitude
}

func (s *PlaceService) validateUploads(images []ImageUpload) error {
	for idx, image := range images {
		if image.Size <= 0 {
			return fmt.Errorf("%w: image %d is empty", ErrPlaceValidation, idx+1)
		}
		if s.maxImageBytes > 0 && image.Size > s.maxImageBytes {
			return fmt.Errorf("%w: image %d exceeds size limit (%d bytes)", ErrPlaceValidation, idx+1, s.maxImageBytes)
		}
	}
	return nil
}

func (s *PlaceService) uploadGallery(ctx context.Context, placeID uuid.UUID, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	stamp := s.now().UTC().Format("20060102T150405")
	for idx, image := range images {
		ext := safeImageExtension(image.ContentType, image.FileName)
		objectKey := fmt.Sprintf("places/%s/gallery/%s_%d%s", placeID.String(), stamp, idx, ext)
		url, err := uploadImage(ctx, s.storage, s.imageProcessor, s.bucket, objectKey, image, s.imageMaxDimension)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *PlaceService) buildAttractions(ctx context.Context, placeID uuid.UUID, inputs []AttractionInput) (domain.AttractionList, error) {
	attractions := make(domain.AttractionList, 0, len(inputs))
	stamp := s.now().UTC().Format("20060102T150405")
	for idx, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: attraction %d has no name", ErrPlaceValidation, idx+1)
		}
		attraction := domain.Attraction{Name: name}
		if input.Image != nil {
			if err := s.validateUploads([]ImageUpload{*input.Image}); err != nil {
				return nil, err
			}
			ext := safeImageExtension(input.Image.ContentType, input.Image.FileName)
			objectKey := fmt.Sprintf("places/%s/attractions/%s_%d%s", placeID.String(), stamp, idx, ext)
			url, err := uploadImage(ctx, s.storage, s.imageProcessor, s.bucket, objectKey, *input.Image, s.imageMaxDimension)
			if err != nil {
				return nil, err
			}
			attraction.Image = url
		}
		attractions = append(attractions, attraction)
	}
	return attractions, nil
}

func (s *PlaceService) buildThingsToDo(ctx context.Context, placeID uuid.UUID, inputs []ThingToDoInput) (domain.ThingToDoList, error) {
	thingsToDo := make(domain.ThingToDoList, 0, len(inputs))
	stamp := s.now().UTC().Format("20060102T150405")
	for idx, input := range inputs {
		title := strings.TrimSpace(input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: activity %d has no title", ErrPlaceValidation, idx+1)
		}
		item := domain.ThingToDo{Title: title, Description: strings.TrimSpace(input.Description)}
		if input.Image != nil {
			if err := s.validateUploads([]ImageUpload{*input.Image}); err != nil {
				return nil, err
			}
			ext := safeImageExtension(input.Image.ContentType, input.Image.FileName)
			objectKey := fmt.Sprintf("places/%s/activities/%s_%d%s", placeID.String(), stamp, idx, ext)
			url, err := uploadImage(ctx, s.storage, s.imageProcessor, s.bucket, objectKey, *input.Image, s.imageMaxDimension)
			if err != nil {
				return nil, err
			}
			item.Image = url
		}
		thingsToDo = append(thingsToDo, item)
	}
	return thingsToDo, nil
}

func normalizeTravelStyles(styles []string) ([]string, error) {
	normalized := make([]string, 0, len(styles))
	for _, style := range styles {
		trimmed := strings.TrimSpace(style)
		if trimmed == "" {
			continue
		}
		if !domain.ValidTravelStyle(trimmed) {
			return nil, fmt.Errorf("%w: unknown travel style %q", ErrPlaceValidation, trimmed)
		}
		normalized = append(normalized, trimmed)
	}
	return normalized, nil
}
