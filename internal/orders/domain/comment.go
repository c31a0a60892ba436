package domain

import "time"

// CommentAuthor identifies the station that wrote a comment.
type CommentAuthor string

const (
	AuthorCashier CommentAuthor = "cashier"
	AuthorMaster  CommentAuthor = "master"
	AuthorServe   CommentAuthor = "serve"
	AuthorOthers  CommentAuthor = "others"
)

// Valid reports whether a is a known author.
func (a CommentAuthor) Valid() bool {
	switch a {
	case AuthorCashier, AuthorMaster, AuthorServe, AuthorOthers:
		return true
	default:
		return false
	}
}

// Comment is an immutable note attached to an order.
type Comment struct {
	Author    CommentAuthor
	Text      string
	CreatedAt time.Time
}
