package models

import "time"

// Comment is a comment on a post. A non-nil ParentID makes it a reply;
// replies nest to any depth through the same foreign key.
type Comment struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	PostID    string        `json:"post_id" gorm:"size:24;not null;index"` // MongoDB ObjectID as hex
	AuthorID  uint          `json:"author_id" gorm:"not null;index"`
	Author    *User         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Content   string        `json:"content" gorm:"type:text;not null"`
	ParentID  *uint         `json:"parent_id" gorm:"index"`
	Replies   []Comment     `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Votes     []CommentVote `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=5000"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == Upvote || v == Downvote
}

// CommentVote is at most one vote per (comment, user)
type CommentVote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID uint      `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_vote_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_comment_vote_user;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	VoteType  VoteType  `json:"vote_type" gorm:"size:10;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type VoteRequest struct {
	VoteType VoteType `json:"vote_type" form:"vote_type"`
}

// VoteAction is what the store has to do to apply a requested vote.
type VoteAction int

const (
	VoteCreate VoteAction = iota
	VoteRemove
	VoteChange
)

// ResolveVote decides how a requested vote applies on top of the caller's
// existing vote (nil when there is none). Repeating the same vote removes it.
func ResolveVote(existing *CommentVote, requested VoteType) VoteAction {
	switch {
	case existing == nil:
		return VoteCreate
	case existing.VoteType == requested:
		return VoteRemove
	default:
		return VoteChange
	}
}

// VoteTally is the per-comment vote summary returned by the vote endpoint.
type VoteTally struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
	Score     int64 `json:"score"`
	Removed   bool  `json:"removed"`
}

func NewVoteTally(up, down int64) VoteTally {
	return VoteTally{Upvotes: up, Downvotes: down, Score: up - down}
}

// CommentNode is a comment with its tally and replies, for rendering threads.
type CommentNode struct {
	Comment
	Author  UserCompact    `json:"author"`
	Votes   VoteTally      `json:"votes"`
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree links a flat, newest-first list of a post's comments into
// threads. Replies whose parent is missing from the list are promoted to roots.
func BuildCommentTree(comments []Comment, tallies map[uint]VoteTally, authors map[uint]UserCompact) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{
			Comment: c,
			Author:  authors[c.AuthorID],
			Votes:   tallies[c.ID],
			Replies: []*CommentNode{},
		}
	}

	roots := make([]*CommentNode, 0, len(comments))
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
