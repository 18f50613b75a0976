package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

var (
	ErrReviewValidation = errors.New("review validation failed")
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewForbidden  = errors.New("not allowed to manage this review")
)

type ReviewService struct {
	reviews ports.ReviewRepository
	places  ports.PlaceRepository
	logger  *log.Logger
}

func NewReviewService(reviews ports.ReviewRepository, places ports.PlaceRepository, logger *log.Logger) *ReviewService {
	if logger == nil {
		logger = log.Default()
	}
	return &ReviewService{reviews: reviews, places: places, logger: logger}
}

func (s *ReviewService) AddReview(ctx context.Context, userID, placeID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrReviewValidation)
	}
	if err := s.ensurePlaceExists(ctx, placeID); err != nil {
		return nil, err
	}

	created, err := s.reviews.Create(ctx, &domain.Review{
		PlaceID: placeID,
		UserID:  userID,
		Rating:  rating,
		Comment: trimmed,
	})
	if err != nil {
		return nil, err
	}

	s.recomputePlaceRating(ctx, placeID)
	return created, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, requesterID uuid.UUID, rating *int, comment *string) (*domain.Review, error) {
	if rating == nil && normalizeString(comment) == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrReviewValidation)
	}
	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return nil, err
		}
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != requesterID {
		return nil, ErrReviewForbidden
	}

	updated, err := s.reviews.Update(ctx, reviewID, rating, normalizeString(comment))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	s.recomputePlaceRating(ctx, review.PlaceID)
	return updated, nil
}

// DeleteReview hard-deletes the review. Only the owner may delete; there is
// no admin override.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, requesterID uuid.UUID) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.UserID != requesterID {
		return ErrReviewForbidden
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}

	s.recomputePlaceRating(ctx, review.PlaceID)
	return nil
}

func (s *ReviewService) ListPlaceReviews(ctx context.Context, placeID uuid.UUID) ([]domain.Review, error) {
	if err := s.ensurePlaceExists(ctx, placeID); err != nil {
		return nil, err
	}
	return s.reviews.ListByPlace(ctx, placeID)
}

// recomputePlaceRating rebuilds the stored rating pair from the review rows.
// The review mutation has already committed, so a failure here is logged and
// never surfaces to the caller; the pair is rebuilt on the next mutation.
func (s *ReviewService) recomputePlaceRating(ctx context.Context, placeID uuid.UUID) {
	aggregate, err := s.reviews.AggregateByPlace(ctx, placeID)
	if err != nil {
		s.logger.Printf("recompute rating for place %s: aggregate failed: %v", placeID, err)
		return
	}
	if err := s.places.UpdateRating(ctx, placeID, aggregate.AverageRating, aggregate.ReviewCount); err != nil {
		s.logger.Printf("recompute rating for place %s: update failed: %v", placeID, err)
	}
}

func (s *ReviewService) ensurePlaceExists(ctx context.Context, placeID uuid.UUID) error {
	if placeID == uuid.Nil {
		return ErrPlaceNotFound
	}
	if _, err := s.places.FindByID(ctx, placeID); err != nil {
		if isNotFound(err) {
			return ErrPlaceNotFound
		}
		return err
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewValidation)
	}
	return nil
}
