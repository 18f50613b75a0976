package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/media"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

var (
	ErrPackageValidation = errors.New("package validation failed")
	ErrPackageNotFound   = errors.New("package not found")
	ErrPackageForbidden  = errors.New("not allowed to manage this package")
)

type PackageCreateInput struct {
	Title       string
	Description string
	Price       float64
	Duration    string
	Image       *ImageUpload
}

type PackageUpdateInput struct {
	Title       *string
	Description *string
	Price       *float64
	Duration    *string
	Image       *ImageUpload
}

type PackageServiceConfig struct {
	Bucket            string
	ImageProcessor    media.Processor
	ImageMaxDimension int
}

type PackageService struct {
	packages ports.PackageRepository
	storage  ports.ObjectStorage

	bucket            string
	imageProcessor    media.Processor
	imageMaxDimension int
	now               func() time.Time
}

func NewPackageService(packages ports.PackageRepository, storage ports.ObjectStorage, cfg PackageServiceConfig) *PackageService {
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}
	return &PackageService{
		packages:          packages,
		storage:           storage,
		bucket:            strings.TrimSpace(cfg.Bucket),
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		now:               time.Now,
	}
}

func (s *PackageService) CreatePackage(ctx context.Context, agencyID uuid.UUID, input PackageCreateInput) (*domain.TravelPackage, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrPackageValidation)
	}
	if input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrPackageValidation)
	}

	pkg := &domain.TravelPackage{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Duration:    strings.TrimSpace(input.Duration),
		CreatedBy:   agencyID,
	}

	if input.Image != nil {
		url, err := s.uploadCover(ctx, uuid.New(), *input.Image)
		if err != nil {
			return nil, err
		}
		pkg.Image = &url
	}

	return s.packages.Create(ctx, pkg)
}

func (s *PackageService) GetPackage(ctx context.Context, id uuid.UUID) (*domain.TravelPackage, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *PackageService) ListPackages(ctx context.Context) ([]domain.TravelPackage, error) {
	return s.packages.List(ctx)
}

func (s *PackageService) UpdatePackage(ctx context.Context, id uuid.UUID, requester *domain.User, input PackageUpdateInput) (*domain.TravelPackage, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManagePackage(pkg, requester) {
		return nil, ErrPackageForbidden
	}
	if input.Price != nil && *input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrPackageValidation)
	}

	fields := domain.PackageFields{
		Title:       normalizeString(input.Title),
		Description: normalizeString(input.Description),
		Price:       input.Price,
		Duration:    normalizeString(input.Duration),
	}
	if input.Image != nil {
		url, err := s.uploadCover(ctx, id, *input.Image)
		if err != nil {
			return nil, err
		}
		fields.Image = &url
	}

	updated, err := s.packages.Update(ctx, id, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *PackageService) DeletePackage(ctx context.Context, id uuid.UUID, requester *domain.User) error {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	if !canManagePackage(pkg, requester) {
		return ErrPackageForbidden
	}
	if err := s.packages.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrPackageNotFound
		}
		return err
	}
	return nil
}

func (s *PackageService) uploadCover(ctx context.Context, packageID uuid.UUID, image ImageUpload) (string, error) {
	if image.Size <= 0 {
		return "", fmt.Errorf("%w: image is empty", ErrPackageValidation)
	}
	ext := safeImageExtension(image.ContentType, image.FileName)
	objectKey := fmt.Sprintf("packages/%s/%s%s", packageID.String(), s.now().UTC().Format("20060102T150405"), ext)
	return uploadImage(ctx, s.storage, s.imageProcessor, s.bucket, objectKey, image, s.imageMaxDimension)
}

func canManagePackage(pkg *domain.TravelPackage, requester *domain.User) bool {
	if requester == nil {
		return false
	}
	return requester.IsAdmin() || pkg.CreatedBy == requester.ID
}
