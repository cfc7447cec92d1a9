package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

func TestReviewVoteHelpfulDeduplicates(t *testing.T) {
	review := &Review{ID: uuid.New()}
	voter := uuid.New()

	assert.True(t, review.VoteHelpful(voter))
	assert.False(t, review.VoteHelpful(voter))
	assert.Equal(t, 1, review.HelpfulCount)

	assert.True(t, review.VoteHelpful(uuid.New()))
	assert.Equal(t, 2, review.HelpfulCount)
}

func TestReviewUnvoteHelpful(t *testing.T) {
	review := &Review{ID: uuid.New()}
	voter := uuid.New()
	review.VoteHelpful(voter)

	assert.True(t, review.UnvoteHelpful(voter))
	assert.Equal(t, 0, review.HelpfulCount)
	assert.False(t, review.UnvoteHelpful(voter))
}

func TestReviewModeration(t *testing.T) {
	review := &Review{Status: enums.ReviewStatusPending}

	review.Approve("looks genuine")
	assert.Equal(t, enums.ReviewStatusApproved, review.Status)
	require.NotNil(t, review.ModerationNote)

	review.MarkPending()
	assert.Equal(t, enums.ReviewStatusPending, review.Status)
	assert.Nil(t, review.ModerationNote)

	review.Reject("spam")
	assert.Equal(t, enums.ReviewStatusRejected, review.Status)
}

func TestReviewReportIncrements(t *testing.T) {
	review := &Review{}
	review.Report()
	review.Report()
	assert.Equal(t, 2, review.ReportCount)
}
