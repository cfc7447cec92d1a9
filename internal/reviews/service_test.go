package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

type stubReviewStore struct {
	byID map[uuid.UUID]*models.Review
}

func newStubReviewStore() *stubReviewStore {
	return &stubReviewStore{byID: map[uuid.UUID]*models.Review{}}
}

func (s *stubReviewStore) Create(_ context.Context, review *models.Review) error {
	s.byID[review.ID] = review
	return nil
}

func (s *stubReviewStore) Save(_ context.Context, review *models.Review) error {
	s.byID[review.ID] = review
	return nil
}

func (s *stubReviewStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

func (s *stubReviewStore) FindByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	if review, ok := s.byID[id]; ok {
		return review, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReviewStore) FindByProductAndUser(_ context.Context, productID, userID uuid.UUID) (*models.Review, error) {
	for _, review := range s.byID {
		if review.ProductID == productID && review.UserID == userID {
			return review, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReviewStore) List(_ context.Context, filter ListFilter, _ pagination.Params) ([]models.Review, int64, error) {
	var out []models.Review
	for _, review := range s.byID {
		if filter.ProductID != nil && review.ProductID != *filter.ProductID {
			continue
		}
		if filter.Status != nil && review.Status != *filter.Status {
			continue
		}
		out = append(out, *review)
	}
	return out, int64(len(out)), nil
}

func (s *stubReviewStore) ListByUser(_ context.Context, userID uuid.UUID, _ pagination.Params) ([]models.Review, int64, error) {
	var out []models.Review
	for _, review := range s.byID {
		if review.UserID == userID {
			out = append(out, *review)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubReviewStore) Aggregate(_ context.Context, productID uuid.UUID) (RatingSummary, error) {
	sum, count := 0, 0
	for _, review := range s.byID {
		if review.ProductID == productID && review.Status == enums.ReviewStatusApproved {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return RatingSummary{}, nil
	}
	return RatingSummary{Average: float64(sum) / float64(count), Count: count}, nil
}

type stubRatingSink struct {
	products map[uuid.UUID]*models.Product
}

func newStubRatingSink() *stubRatingSink {
	return &stubRatingSink{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubRatingSink) add() *models.Product {
	p := &models.Product{ID: uuid.New(), Status: enums.ProductStatusActive}
	s.products[p.ID] = p
	return p
}

func (s *stubRatingSink) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRatingSink) UpdateRating(_ context.Context, id uuid.UUID, average float64, count int) error {
	if p, ok := s.products[id]; ok {
		p.ApplyRating(average, count)
	}
	return nil
}

type stubPurchaseChecker struct {
	purchased map[uuid.UUID]map[uuid.UUID]bool
}

func newStubPurchaseChecker() *stubPurchaseChecker {
	return &stubPurchaseChecker{purchased: map[uuid.UUID]map[uuid.UUID]bool{}}
}

func (s *stubPurchaseChecker) mark(userID, productID uuid.UUID) {
	if s.purchased[userID] == nil {
		s.purchased[userID] = map[uuid.UUID]bool{}
	}
	s.purchased[userID][productID] = true
}

func (s *stubPurchaseChecker) HasPurchased(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.purchased[userID][productID], nil
}

type reviewFixture struct {
	svc       Service
	reviews   *stubReviewStore
	products  *stubRatingSink
	purchases *stubPurchaseChecker
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		reviews:   newStubReviewStore(),
		products:  newStubRatingSink(),
		purchases: newStubPurchaseChecker(),
	}
	svc, err := NewService(ServiceParams{
		Reviews:   f.reviews,
		Products:  f.products,
		Purchases: f.purchases,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestCreateReviewStartsPending(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()
	userID := uuid.New()
	f.purchases.mark(userID, product.ID)

	review, err := f.svc.Create(context.Background(), userID, CreateReviewDTO{
		ProductID: product.ID,
		Rating:    4,
	})

	require.NoError(t, err)
	assert.Equal(t, enums.ReviewStatusPending, review.Status)
	assert.True(t, review.IsVerifiedPurchase)
	assert.Equal(t, float64(0), f.products.products[product.ID].RatingAverage)
}

func TestCreateSecondReviewRejected(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()
	userID := uuid.New()

	_, err := f.svc.Create(context.Background(), userID, CreateReviewDTO{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), userID, CreateReviewDTO{ProductID: product.ID, Rating: 1})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateRatingOutOfRange(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 6})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestModerateApproveFeedsProductRating(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()

	first, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)

	_, err = f.svc.Moderate(context.Background(), first.ID, ModerateDTO{Approve: true})
	require.NoError(t, err)
	_, err = f.svc.Moderate(context.Background(), second.ID, ModerateDTO{Approve: true})
	require.NoError(t, err)

	assert.InDelta(t, 3.5, f.products.products[product.ID].RatingAverage, 0.001)
	assert.Equal(t, 2, f.products.products[product.ID].RatingCount)
}

func TestModerateRejectExcludesFromRating(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()

	review, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	moderated, err := f.svc.Moderate(context.Background(), review.ID, ModerateDTO{Approve: false, Note: "spam"})
	require.NoError(t, err)

	assert.Equal(t, enums.ReviewStatusRejected, moderated.Status)
	assert.Equal(t, 0, f.products.products[product.ID].RatingCount)
}

func TestUpdateApprovedReviewGoesBackToPending(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()
	userID := uuid.New()

	review, err := f.svc.Create(context.Background(), userID, CreateReviewDTO{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Moderate(context.Background(), review.ID, ModerateDTO{Approve: true})
	require.NoError(t, err)
	require.Equal(t, 1, f.products.products[product.ID].RatingCount)

	rating := 3
	updated, err := f.svc.Update(context.Background(), userID, review.ID, UpdateReviewDTO{Rating: &rating})
	require.NoError(t, err)

	assert.Equal(t, enums.ReviewStatusPending, updated.Status)
	assert.Equal(t, 0, f.products.products[product.ID].RatingCount)
}

func TestDeleteApprovedReviewRefreshesRating(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()
	userID := uuid.New()

	review, err := f.svc.Create(context.Background(), userID, CreateReviewDTO{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Moderate(context.Background(), review.ID, ModerateDTO{Approve: true})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), userID, false, review.ID))

	assert.Equal(t, 0, f.products.products[product.ID].RatingCount)
}

func TestDeleteForeignReviewRequiresAdmin(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()
	owner := uuid.New()

	review, err := f.svc.Create(context.Background(), owner, CreateReviewDTO{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), uuid.New(), false, review.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.NoError(t, f.svc.Delete(context.Background(), uuid.New(), true, review.ID))
}

func TestVoteDeduplicates(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()

	review, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	voter := uuid.New()
	voted, err := f.svc.Vote(context.Background(), voter, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.HelpfulCount)

	_, err = f.svc.Vote(context.Background(), voter, review.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	unvoted, err := f.svc.Unvote(context.Background(), voter, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unvoted.HelpfulCount)
}

func TestListForProductOnlyApproved(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()

	approved, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)
	_, err = f.svc.Moderate(context.Background(), approved.ID, ModerateDTO{Approve: true})
	require.NoError(t, err)

	page, err := f.svc.ListForProduct(context.Background(), product.ID, pagination.Params{})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, approved.ID, page.Items[0].ID)
}

func TestReportIncrements(t *testing.T) {
	f := newReviewFixture(t)
	product := f.products.add()

	review, err := f.svc.Create(context.Background(), uuid.New(), CreateReviewDTO{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)

	require.NoError(t, f.svc.Report(context.Background(), review.ID))
	require.NoError(t, f.svc.Report(context.Background(), review.ID))

	assert.Equal(t, 2, f.reviews.byID[review.ID].ReportCount)
}
