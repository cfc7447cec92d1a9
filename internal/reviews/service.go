package reviews

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// reviewStore is the slice of the reviews repository the service needs.
type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Review, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Review, int64, error)
	Aggregate(ctx context.Context, productID uuid.UUID) (RatingSummary, error)
}

// ratingSink resolves products and receives refreshed rating summaries.
type ratingSink interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error
}

// purchaseChecker reports whether a user actually bought a product.
type purchaseChecker interface {
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// ServiceParams groups dependencies for the reviews service.
type ServiceParams struct {
	Reviews   reviewStore
	Products  ratingSink
	Purchases purchaseChecker
}

// Service exposes review lifecycle, votes and moderation.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, dto CreateReviewDTO) (*models.Review, error)
	Update(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID, dto UpdateReviewDTO) (*models.Review, error)
	Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error
	ListForProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) (ReviewPageDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (ReviewPageDTO, error)
	ListAll(ctx context.Context, filter ListFilter, page pagination.Params) (ReviewPageDTO, error)
	Vote(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID) (*models.Review, error)
	Unvote(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID) (*models.Review, error)
	Report(ctx context.Context, reviewID uuid.UUID) error
	Moderate(ctx context.Context, reviewID uuid.UUID, dto ModerateDTO) (*models.Review, error)
}

type service struct {
	reviews   reviewStore
	products  ratingSink
	purchases purchaseChecker
}

// NewService builds the reviews service.
func NewService(params ServiceParams) (Service, error) {
	if params.Reviews == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating sink is required")
	}
	if params.Purchases == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase checker is required")
	}
	return &service{
		reviews:   params.Reviews,
		products:  params.Products,
		purchases: params.Purchases,
	}, nil
}

// Create submits a review into the moderation queue. One review per product
// per user.
func (s *service) Create(ctx context.Context, userID uuid.UUID, dto CreateReviewDTO) (*models.Review, error) {
	if dto.Rating < 1 || dto.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	if _, err := s.products.FindByID(ctx, dto.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if _, err := s.reviews.FindByProductAndUser(ctx, dto.ProductID, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "you already reviewed this product")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	verified, err := s.purchases.HasPurchased(ctx, userID, dto.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase")
	}

	review := &models.Review{
		ID:                 uuid.New(),
		ProductID:          dto.ProductID,
		UserID:             userID,
		Rating:             dto.Rating,
		Title:              dto.Title,
		Comment:            dto.Comment,
		Status:             enums.ReviewStatusPending,
		IsVerifiedPurchase: verified,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return review, nil
}

// Update edits the caller's review and sends it back through moderation. An
// edit to a previously approved review leaves the rating pool, so the
// product summary is refreshed.
func (s *service) Update(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID, dto UpdateReviewDTO) (*models.Review, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	if dto.Rating != nil && (*dto.Rating < 1 || *dto.Rating > 5) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	wasApproved := review.Status == enums.ReviewStatusApproved

	if dto.Rating != nil {
		review.Rating = *dto.Rating
	}
	if dto.Title != nil {
		review.Title = dto.Title
	}
	if dto.Comment != nil {
		review.Comment = dto.Comment
	}
	review.MarkPending()

	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	if wasApproved {
		if err := s.refreshRating(ctx, review.ProductID); err != nil {
			return nil, err
		}
	}
	return review, nil
}

// Delete removes a review. Owners may delete their own, admins any.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}

	wasApproved := review.Status == enums.ReviewStatusApproved
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	if wasApproved {
		return s.refreshRating(ctx, review.ProductID)
	}
	return nil
}

// ListForProduct returns one page of a product's approved reviews.
func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) (ReviewPageDTO, error) {
	page.Normalize()
	approved := enums.ReviewStatusApproved
	items, total, err := s.reviews.List(ctx, ListFilter{ProductID: &productID, Status: &approved}, page)
	if err != nil {
		return ReviewPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return ReviewPageDTO{Items: items, Meta: page.MetaFor(total)}, nil
}

// ListMine returns one page of the caller's reviews in any status.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (ReviewPageDTO, error) {
	page.Normalize()
	items, total, err := s.reviews.ListByUser(ctx, userID, page)
	if err != nil {
		return ReviewPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return ReviewPageDTO{Items: items, Meta: page.MetaFor(total)}, nil
}

// ListAll returns one page of reviews for admin moderation.
func (s *service) ListAll(ctx context.Context, filter ListFilter, page pagination.Params) (ReviewPageDTO, error) {
	page.Normalize()
	items, total, err := s.reviews.List(ctx, filter, page)
	if err != nil {
		return ReviewPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return ReviewPageDTO{Items: items, Meta: page.MetaFor(total)}, nil
}

// Vote records a helpful vote. Voting twice is a conflict.
func (s *service) Vote(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID) (*models.Review, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.VoteHelpful(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "you already voted on this review")
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	return review, nil
}

// Unvote withdraws a helpful vote.
func (s *service) Unvote(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID) (*models.Review, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.UnvoteHelpful(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "you have not voted on this review")
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	return review, nil
}

// Report flags a review for moderator attention.
func (s *service) Report(ctx context.Context, reviewID uuid.UUID) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	review.Report()
	if err := s.reviews.Save(ctx, review); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	return nil
}

// Moderate approves or rejects a review and refreshes the product's rating
// summary from the approved pool.
func (s *service) Moderate(ctx context.Context, reviewID uuid.UUID, dto ModerateDTO) (*models.Review, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if dto.Approve {
		review.Approve(dto.Note)
	} else {
		review.Reject(dto.Note)
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	if err := s.refreshRating(ctx, review.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *service) refreshRating(ctx context.Context, productID uuid.UUID) error {
	summary, err := s.reviews.Aggregate(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	if err := s.products.UpdateRating(ctx, productID, summary.Average, summary.Count); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
	}
	return nil
}

func (s *service) load(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}
