package models

import (
	"time"
)

// NewPost builds a post from client input. The store assigns the ID.
func NewPost(patch *PostPatch) *Post {
	post := &Post{}
	if patch != nil {
		post.Apply(patch)
	}
	post.BeforeCreate()
	return post
}

// BeforeCreate resets the server-owned fields of a new post
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Views = 0
	p.Shares = 0
	p.CommentsCount = 0
	p.Comments = []*Comment{}
}

// Apply merges the supplied patch fields onto the post.
func (p *Post) Apply(patch *PostPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.CategoryName != nil {
		p.CategoryName = *patch.CategoryName
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.DateFormatted != nil {
		p.DateFormatted = *patch.DateFormatted
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Published != nil {
		p.Published = *patch.Published
	}
}

// Normalize fills nil collections so the post always serializes comments as an array.
func (p *Post) Normalize() *Post {
	if p.Comments == nil {
		p.Comments = []*Comment{}
	}
	return p
}

// AddComment appends a comment to the post
func (p *Post) AddComment(comment *Comment) {
	p.Comments = append(p.Comments, comment)
	p.CommentsCount++
}

// ApprovedComments returns the comments visible to readers, oldest first.
func (p *Post) ApprovedComments() []*Comment {
	approved := make([]*Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		if c.Approved {
			approved = append(approved, c)
		}
	}
	return approved
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Comments = make([]*Comment, len(p.Comments))
	for i, c := range p.Comments {
		cc := *c
		cp.Comments[i] = &cc
	}
	return &cp
}

// Fields returns the patch as a map keyed by the stored field names, for stores
// that apply partial updates natively.
func (patch *PostPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	set := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	set("title", patch.Title)
	set("excerpt", patch.Excerpt)
	set("category", patch.Category)
	set("categoryName", patch.CategoryName)
	set("date", patch.Date)
	set("dateFormatted", patch.DateFormatted)
	set("image", patch.Image)
	set("content", patch.Content)
	if patch.Published != nil {
		fields["published"] = *patch.Published
	}
	return fields
}
