package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
)

func seedPlace(repo *memoryPlaceRepository, name string, styles ...string) *domain.Place {
	place, _ := repo.Create(context.Background(), &domain.Place{
		Name:         name,
		Description:  "somewhere worth going",
		TravelStyles: styles,
	})
	return place
}

func TestReviewService_AddReview_RecomputesRating(t *testing.T) {
	ctx := context.Background()
	places := newMemoryPlaceRepository()
	reviews := newMemoryReviewRepository()
	svc := NewReviewService(reviews, places, nil)

	place := seedPlace(places, "Bhaktapur Durbar Square", "Temple")

	if _, err := svc.AddReview(ctx, uuid.New(), place.ID, 5, "stunning"); err != nil {
		t.Fatalf("AddReview returned error: %v", err)
	}
	if _, err := svc.AddReview(ctx, uuid.New(), place.ID, 3, "crowded"); err != nil {
		t.Fatalf("AddReview returned error: %v", err)
	}

	stored, err := places.FindByID(ctx, place.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.ReviewCount != 2 {
		t.Fatalf("expected review count 2, got %d", stored.ReviewCount)
	}
	if stored.AverageRating != 4 {
		t.Fatalf("expected average rating 4, got %v", stored.AverageRating)
	}
}

func TestReviewService_AddReview_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	places := newMemoryPlaceRepository()
	svc := NewReviewService(newMemoryReviewRepository(), places, nil)

	place := seedPlace(places, "Garden of Dreams", "City")

	if _, err := svc.AddReview(ctx, uuid.New(), place.ID, 0, "meh"); !errors.Is(err, ErrReviewValidation) {
		t.Fatalf("expected ErrReviewValidation for rating 0, got %v", err)
	}
	if _, err := svc.AddReview(ctx, uuid.New(), place.ID, 6, "wow"); !errors.Is(err, ErrReviewValidation) {
		t.Fatalf("expected ErrReviewValidation for rating 6, got %v", err)
	}
	if _, err := svc.AddReview(ctx, uuid.New(), place.ID, 4, "   "); !errors.Is(err, ErrReviewValidation) {
		t.Fatalf("expected ErrReviewValidation for blank comment, got %v", err)
	}
	if _, err := svc.AddReview(ctx, uuid.New(), uuid.New(), 4, "fine"); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound for missing place, got %v", err)
	}
}

func TestReviewService_UpdateReview_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	places := newMemoryPlaceRepository()
	reviews := newMemoryReviewRepository()
	svc := NewReviewService(reviews, places, nil)

	place := seedPlace(places, "Swayambhunath", "Temple")
	owner := uuid.New()

	review, err := svc.AddReview(ctx, owner, place.ID, 2, "steep climb")
	if err != nil {
		t.Fatalf("AddReview returned error: %v", err)
	}

	newRating := 4
	if _, err := svc.UpdateReview(ctx, review.ID, uuid.New(), &newRating, nil); !errors.Is(err, ErrReviewForbidden) {
		t.Fatalf("expected ErrReviewForbidden for non-owner, got %v", err)
	}

	updated, err := svc.UpdateReview(ctx, review.ID, owner, &newRating, nil)
	if err != nil {
		t.Fatalf("UpdateReview returned error: %v", err)
	}
	if updated.Rating != 4 {
		t.Fatalf("expected rating 4, got %d", updated.Rating)
	}
	if updated.Comment != "steep climb" {
		t.Fatalf("expected comment preserved, got %q", updated.Comment)
	}

	stored, _ := places.FindByID(ctx, place.ID)
	if stored.AverageRating != 4 {
		t.Fatalf("expected recomputed average 4, got %v", stored.AverageRating)
	}
}

func TestReviewService_DeleteReview_Permissions(t *testing.T) {
	ctx := context.Background()
	places := newMemoryPlaceRepository()
	reviews := newMemoryReviewRepository()
	svc := NewReviewService(reviews, places, nil)

	place := seedPlace(places, "Phewa Lake", "Adventure")
	owner := uuid.New()

	review, err := svc.AddReview(ctx, owner, place.ID, 5, "paddle boats")
	if err != nil {
		t.Fatalf("AddReview returned error: %v", err)
	}

	if err := svc.DeleteReview(ctx, review.ID, uuid.New()); !errors.Is(err, ErrReviewForbidden) {
		t.Fatalf("expected ErrReviewForbidden, got %v", err)
	}

	if err := svc.DeleteReview(ctx, review.ID, owner); err != nil {
		t.Fatalf("DeleteReview by owner returned error: %v", err)
	}

	stored, _ := places.FindByID(ctx, place.ID)
	if stored.ReviewCount != 0 || stored.AverageRating != 0 {
		t.Fatalf("expected rating pair reset, got count=%d avg=%v", stored.ReviewCount, stored.AverageRating)
	}

	if err := svc.DeleteReview(ctx, review.ID, owner); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound for second delete, got %v", err)
	}
}

func TestReviewService_DeleteReview_NoRoleOverride(t *testing.T) {
	ctx := context.Background()
	places := newMemoryPlaceRepository()
	reviews := newMemoryReviewRepository()
	svc := NewReviewService(reviews, places, nil)

	place := seedPlace(places, "Patan Museum", "City")
	owner := uuid.New()

	review, err := svc.AddReview(ctx, owner, place.ID, 4, "great courtyard")
	if err != nil {
		t.Fatalf("AddReview returned error: %v", err)
	}

	// Ownership is the only permission; no other identity may delete.
	if err := svc.DeleteReview(ctx, review.ID, uuid.New()); !errors.Is(err, ErrReviewForbidden) {
		t.Fatalf("expected ErrReviewForbidden for non-owner, got %v", err)
	}
	if _, err := reviews.GetByID(ctx, review.ID); err != nil {
		t.Fatalf("review should survive a forbidden delete, got %v", err)
	}
}

func TestReviewService_AggregatorFailureDoesNotPropagate(t *testing.T) {
	ctx := context.Background()
	places := newMemoryPlaceRepository()
	reviews := newMemoryReviewRepository()
	svc := NewReviewService(reviews, places, nil)

	place := seedPlace(places, "Rani Pokhari", "City")
	owner := uuid.New()

	review, err := svc.AddReview(ctx, owner, place.ID, 4, "quiet spot")
	if err != nil {
		t.Fatalf("AddReview returned error: %v", err)
	}

	// The place disappearing between commit and recompute must not fail the
	// review mutation itself.
	if err := places.Delete(ctx, place.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	newRating := 5
	if _, err := svc.UpdateReview(ctx, review.ID, owner, &newRating, nil); err != nil {
		t.Fatalf("UpdateReview should swallow aggregator failure, got %v", err)
	}
}
