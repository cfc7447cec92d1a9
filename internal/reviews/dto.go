package reviews

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// CreateReviewDTO carries a new review after validation.
type CreateReviewDTO struct {
	ProductID uuid.UUID
	Rating    int
	Title     *string
	Comment   *string
}

// UpdateReviewDTO carries review edits. Nil fields stay untouched.
type UpdateReviewDTO struct {
	Rating  *int
	Title   *string
	Comment *string
}

// ModerateDTO carries a moderation decision.
type ModerateDTO struct {
	Approve bool
	Note    string
}

// ListFilter narrows an admin review listing.
type ListFilter struct {
	ProductID *uuid.UUID
	Status    *enums.ReviewStatus
}

// ReviewPageDTO is one page of reviews.
type ReviewPageDTO struct {
	Items []models.Review
	Meta  pagination.Meta
}

// RatingSummary is the aggregate over a product's approved reviews.
type RatingSummary struct {
	Average float64
	Count   int
}
