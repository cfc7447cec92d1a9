package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// Review is a customer's rating of a product. New and edited reviews sit in
// pending until a moderator approves them, and only approved reviews feed the
// product's rating summary.
type Review struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index:idx_reviews_product_user,unique"`
	UserID             uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:idx_reviews_product_user,unique"`
	OrderID            *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	Rating             int                `gorm:"column:rating;not null"`
	Title              *string            `gorm:"column:title"`
	Comment            *string            `gorm:"column:comment"`
	Status             enums.ReviewStatus `gorm:"column:status;not null;default:'pending'"`
	IsVerifiedPurchase bool               `gorm:"column:is_verified_purchase;not null;default:false"`
	HelpfulVotes       UUIDList           `gorm:"column:helpful_votes;type:jsonb;serializer:json"`
	HelpfulCount       int                `gorm:"column:helpful_count;not null;default:0"`
	ReportCount        int                `gorm:"column:report_count;not null;default:0"`
	ModerationNote     *string            `gorm:"column:moderation_note"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// UUIDList stores voter ids as a jsonb array.
type UUIDList []uuid.UUID

// Contains reports membership.
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// VoteHelpful records a helpful vote. Returns false when the user already
// voted, leaving the count untouched.
func (r *Review) VoteHelpful(userID uuid.UUID) bool {
	if r.HelpfulVotes.Contains(userID) {
		return false
	}
	r.HelpfulVotes = append(r.HelpfulVotes, userID)
	r.HelpfulCount = len(r.HelpfulVotes)
	return true
}

// UnvoteHelpful withdraws a vote. Returns false when no vote existed.
func (r *Review) UnvoteHelpful(userID uuid.UUID) bool {
	for i, v := range r.HelpfulVotes {
		if v == userID {
			r.HelpfulVotes = append(r.HelpfulVotes[:i], r.HelpfulVotes[i+1:]...)
			r.HelpfulCount = len(r.HelpfulVotes)
			return true
		}
	}
	return false
}

// Report bumps the report counter.
func (r *Review) Report() {
	r.ReportCount++
}

// Approve moves the review to approved with an optional moderator note.
func (r *Review) Approve(note string) {
	r.Status = enums.ReviewStatusApproved
	r.setModerationNote(note)
}

// Reject moves the review to rejected with an optional moderator note.
func (r *Review) Reject(note string) {
	r.Status = enums.ReviewStatusRejected
	r.setModerationNote(note)
}

// MarkPending sends an edited review back through moderation.
func (r *Review) MarkPending() {
	r.Status = enums.ReviewStatusPending
	r.ModerationNote = nil
}

func (r *Review) setModerationNote(note string) {
	if note == "" {
		r.ModerationNote = nil
		return
	}
	r.ModerationNote = &note
}
