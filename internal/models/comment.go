package models

import "time"

type CommentStatus string

const (
	CommentApproved CommentStatus = "approved"
	CommentPending  CommentStatus = "pending"
	CommentSpam     CommentStatus = "spam"
)

func (s CommentStatus) Valid() bool {
	switch s {
	case CommentApproved, CommentPending, CommentSpam:
		return true
	}
	return false
}

func CommentStatusValues() []string {
	return []string{string(CommentApproved), string(CommentPending), string(CommentSpam)}
}

type Comment struct {
	ID        int64         `json:"id"`
	ArticleID int64         `json:"article"`
	UserID    int64         `json:"-"`
	User      *AuthorRef    `json:"user,omitempty"`
	ParentID  *int64        `json:"parent"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	Replies   []*Comment    `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
	Parent  *int64 `json:"parent,omitempty"`
}

type UpdateCommentStatusRequest struct {
	Status CommentStatus `json:"status"`
}
