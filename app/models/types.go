package models

import "time"

// Post represents a blog post with its engagement counters and comments.
type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Category      string     `json:"category"`
	CategoryName  string     `json:"categoryName"`
	Date          string     `json:"date"`
	DateFormatted string     `json:"dateFormatted"`
	Image         string     `json:"image"`
	Content       string     `json:"content"`
	Published     bool       `json:"published"`
	CreatedAt     time.Time  `json:"createdAt"`
	Views         int64      `json:"views"`
	Shares        int64      `json:"shares"`
	CommentsCount int        `json:"commentsCount"`
	Comments      []*Comment `json:"comments"`
}

// Comment represents a reader comment on a blog post.
type Comment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Approved  bool      `json:"approved"`
}

// PostPatch carries the client-writable post fields. A nil field was not
// supplied and leaves the stored value alone.
type PostPatch struct {
	Title         *string `json:"title"`
	Excerpt       *string `json:"excerpt"`
	Category      *string `json:"category"`
	CategoryName  *string `json:"categoryName"`
	Date          *string `json:"date"`
	DateFormatted *string `json:"dateFormatted"`
	Image         *string `json:"image"`
	Content       *string `json:"content"`
	Published     *bool   `json:"published"`
}

// CommentInput is the body accepted when a reader submits a comment.
type CommentInput struct {
	Name    string `json:"name" validate:"max=100"`
	Email   string `json:"email" validate:"omitempty,email,max=254"`
	Content string `json:"content" validate:"required,max=5000"`
}

// Stats summarizes the post collection.
type Stats struct {
	TotalPosts     int64 `json:"totalPosts"`
	PublishedPosts int64 `json:"publishedPosts"`
}
