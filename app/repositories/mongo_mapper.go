package repositories

import (
	"time"

	"folio/app/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// postDocument is the stored shape of a post. Field names match the
// collection the site has always written, so existing documents decode
// unchanged. ID is only present on posts migrated from the flat file.
type postDocument struct {
	ObjectID      primitive.ObjectID `bson:"_id,omitempty"`
	ID            string             `bson:"id,omitempty"`
	Title         string             `bson:"title"`
	Excerpt       string             `bson:"excerpt"`
	Category      string             `bson:"category"`
	CategoryName  string             `bson:"categoryName"`
	Date          string             `bson:"date"`
	DateFormatted string             `bson:"dateFormatted"`
	Image         string             `bson:"image"`
	Content       string             `bson:"content"`
	Published     bool               `bson:"published"`
	CreatedAt     time.Time          `bson:"createdAt"`
	Views         int64              `bson:"views"`
	Shares        int64              `bson:"shares"`
	CommentsCount int                `bson:"commentsCount"`
	Comments      []commentDocument  `bson:"comments"`
}

type commentDocument struct {
	ID        string    `bson:"id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
	Approved  bool      `bson:"approved"`
}

// toPostDocument maps a post to its stored form. A 24-hex id becomes the
// document _id; any other id is kept in the id field.
func toPostDocument(p *models.Post) *postDocument {
	doc := &postDocument{
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Category:      p.Category,
		CategoryName:  p.CategoryName,
		Date:          p.Date,
		DateFormatted: p.DateFormatted,
		Image:         p.Image,
		Content:       p.Content,
		Published:     p.Published,
		CreatedAt:     p.CreatedAt,
		Views:         p.Views,
		Shares:        p.Shares,
		CommentsCount: p.CommentsCount,
		Comments:      make([]commentDocument, 0, len(p.Comments)),
	}
	if p.ID != "" {
		if id, err := models.ParseID(p.ID); err == nil && id.IsNative() {
			doc.ObjectID = id.Native
		} else {
			doc.ID = p.ID
		}
	}
	for _, c := range p.Comments {
		doc.Comments = append(doc.Comments, toCommentDocument(c))
	}
	return doc
}

func toCommentDocument(c *models.Comment) commentDocument {
	return commentDocument{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Approved:  c.Approved,
	}
}

// toPost maps a stored document back to a post. The legacy id field wins
// over _id so links to migrated posts keep resolving.
func toPost(doc *postDocument) *models.Post {
	p := &models.Post{
		ID:            doc.ID,
		Title:         doc.Title,
		Excerpt:       doc.Excerpt,
		Category:      doc.Category,
		CategoryName:  doc.CategoryName,
		Date:          doc.Date,
		DateFormatted: doc.DateFormatted,
		Image:         doc.Image,
		Content:       doc.Content,
		Published:     doc.Published,
		CreatedAt:     doc.CreatedAt,
		Views:         doc.Views,
		Shares:        doc.Shares,
		CommentsCount: doc.CommentsCount,
		Comments:      make([]*models.Comment, 0, len(doc.Comments)),
	}
	if p.ID == "" {
		p.ID = doc.ObjectID.Hex()
	}
	for _, c := range doc.Comments {
		p.Comments = append(p.Comments, &models.Comment{
			ID:        c.ID,
			Name:      c.Name,
			Email:     c.Email,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			Approved:  c.Approved,
		})
	}
	return p
}

// candidateFilters lists the filters that may match id, in lookup order.
func candidateFilters(id models.PostID) []bson.M {
	if id.IsNative() {
		return []bson.M{
			{"_id": id.Native},
			{"id": id.Native.Hex()},
		}
	}
	return []bson.M{{"id": id.Opaque}}
}

// importFilter is the upsert key for a post being imported.
func importFilter(doc *postDocument) bson.M {
	if doc.ID != "" {
		return bson.M{"id": doc.ID}
	}
	return bson.M{"_id": doc.ObjectID}
}
