package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus mirrors the workflow status stored alongside a review.
type ReviewStatus string

const (
	ReviewStatusNew     ReviewStatus = "new"
	ReviewStatusReplied ReviewStatus = "replied"
	ReviewStatusIgnored ReviewStatus = "ignored"
)

// Review is a single Google Business Profile review as stored by the ingest
// pipeline. The analytics engine reads these rows, it never writes them.
//
// Three candidate timestamps exist because ingest sources disagree on which
// one is populated: CreateTime from the profile API, UpdateTime when only an
// edit timestamp survived, and RecordedAt as the local insertion time. The
// first present one is the review's effective time.
type Review struct {
	ID           uuid.UUID    `json:"id"`
	TenantID     uuid.UUID    `json:"tenant_id"`
	LocationID   uuid.UUID    `json:"location_id"`
	Rating       *int         `json:"rating,omitempty"`
	Comment      *string      `json:"comment,omitempty"`
	CreateTime   *time.Time   `json:"create_time,omitempty"`
	UpdateTime   *time.Time   `json:"update_time,omitempty"`
	RecordedAt   *time.Time   `json:"recorded_at,omitempty"`
	ReplyText    *string      `json:"reply_text,omitempty"`
	ReplyTime    *time.Time   `json:"reply_time,omitempty"`
	OwnerReply   *string      `json:"owner_reply,omitempty"`
	OwnerReplyAt *time.Time   `json:"owner_reply_at,omitempty"`
	Status       ReviewStatus `json:"status"`
}

// EffectiveTime returns the first present timestamp in the
// create -> update -> recorded fallback chain, or nil when all are absent.
func (r *Review) EffectiveTime() *time.Time {
	if r.CreateTime != nil {
		return r.CreateTime
	}
	if r.UpdateTime != nil {
		return r.UpdateTime
	}
	return r.RecordedAt
}

// Replyable reports whether the review carries comment text an operator
// could answer. Blank-after-trim comments do not count.
func (r *Review) Replyable() bool {
	return r.Comment != nil && strings.TrimSpace(*r.Comment) != ""
}

// Replied reports whether any reply signal is present: reply text or
// timestamp, owner-reply text or timestamp, or a replied status flag.
func (r *Review) Replied() bool {
	if r.ReplyText != nil || r.ReplyTime != nil || r.OwnerReply != nil || r.OwnerReplyAt != nil {
		return true
	}
	return r.Status == ReviewStatusReplied
}

// BestReplyTime returns the reply timestamp used for delay metrics, preferring
// the direct reply time over the owner-reply time.
func (r *Review) BestReplyTime() *time.Time {
	if r.ReplyTime != nil {
		return r.ReplyTime
	}
	return r.OwnerReplyAt
}

// Negative reports whether the review has a rating of 2 or below.
// Reviews without a rating are never negative.
func (r *Review) Negative() bool {
	return r.Rating != nil && *r.Rating <= 2
}
