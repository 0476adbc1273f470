package repositories

import (
	"context"
	"time"

	"folio/app/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore implements PostStore on a MongoDB collection. Counter and
// comment updates are single-document atomic operators, so concurrent
// requests never lose increments.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ownsClient bool
}

// NewMongoStore uses an existing collection. The caller owns its client.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{
		client:     collection.Database().Client(),
		collection: collection,
	}
}

// OpenMongoStore connects to uri and verifies the server answers.
func OpenMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(mongoConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, unavailable(err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable(err, "ping mongodb")
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		ownsClient: true,
	}, nil
}

func (s *MongoStore) Kind() string { return "mongodb" }

// Database and Collection name the backing collection for health reports.
func (s *MongoStore) Database() string   { return s.collection.Database().Name() }
func (s *MongoStore) Collection() string { return s.collection.Name() }

// Ping reports whether the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable(err, "ping mongodb")
	}
	return nil
}

func (s *MongoStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes listings and legacy-id lookups rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return s.storeError(err, "create indexes")
}

func (s *MongoStore) List(ctx context.Context, filter ListFilter) ([]*models.Post, error) {
	query := bson.M{}
	if filter.PublishedOnly {
		query["published"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, s.storeError(err, "list posts")
	}
	defer cursor.Close(ctx)

	posts := []*models.Post{}
	for cursor.Next(ctx) {
		var doc postDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode post")
		}
		posts = append(posts, toPost(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, s.storeError(err, "list posts")
	}
	return posts, nil
}

func (s *MongoStore) Get(ctx context.Context, id models.PostID) (*models.Post, error) {
	for _, filter := range candidateFilters(id) {
		var doc postDocument
		err := s.collection.FindOne(ctx, filter).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, s.storeError(err, "get post")
		}
		return toPost(&doc), nil
	}
	return nil, ErrNotFound
}

// Create inserts the post under a new ObjectID.
func (s *MongoStore) Create(ctx context.Context, post *models.Post) error {
	post.Normalize()
	doc := toPostDocument(post)
	if doc.ID == "" && doc.ObjectID.IsZero() {
		doc.ObjectID = models.NewNativeID().Native
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return s.storeError(err, "create post")
	}
	post.ID = toPost(doc).ID
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id models.PostID, patch *models.PostPatch) (*models.Post, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": fields}, "update post")
}

func (s *MongoStore) Delete(ctx context.Context, id models.PostID) error {
	for _, filter := range candidateFilters(id) {
		res, err := s.collection.DeleteOne(ctx, filter)
		if err != nil {
			return s.storeError(err, "delete post")
		}
		if res.DeletedCount > 0 {
			return nil
		}
	}
	return ErrNotFound
}

func (s *MongoStore) IncrementViews(ctx context.Context, id models.PostID) (*models.Post, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"views": 1}}, "increment views")
}

func (s *MongoStore) IncrementShares(ctx context.Context, id models.PostID) (int64, error) {
	post, err := s.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"shares": 1}}, "increment shares")
	if err != nil {
		return 0, err
	}
	return post.Shares, nil
}

func (s *MongoStore) AppendComment(ctx context.Context, id models.PostID, comment *models.Comment) error {
	update := bson.M{
		"$push": bson.M{"comments": toCommentDocument(comment)},
		"$inc":  bson.M{"commentsCount": 1},
	}
	_, err := s.findOneAndUpdate(ctx, id, update, "append comment")
	return err
}

// Import upserts each post, keyed by its legacy id or its ObjectID.
func (s *MongoStore) Import(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(posts))
	for _, p := range posts {
		doc := toPostDocument(p.Clone().Normalize())
		if doc.ID == "" && doc.ObjectID.IsZero() {
			doc.ObjectID = models.NewNativeID().Native
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(importFilter(doc)).
			SetReplacement(doc).
			SetUpsert(true))
	}

	_, err := s.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return s.storeError(err, "import posts")
}

func (s *MongoStore) Stats(ctx context.Context) (models.Stats, error) {
	total, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.Stats{}, s.storeError(err, "count posts")
	}
	published, err := s.collection.CountDocuments(ctx, bson.M{"published": true})
	if err != nil {
		return models.Stats{}, s.storeError(err, "count published posts")
	}
	return models.Stats{TotalPosts: total, PublishedPosts: published}, nil
}

// findOneAndUpdate applies update to the first candidate document matching
// id and returns the post as it is after the update.
func (s *MongoStore) findOneAndUpdate(ctx context.Context, id models.PostID, update bson.M, op string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	for _, filter := range candidateFilters(id) {
		var doc postDocument
		err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, s.storeError(err, op)
		}
		return toPost(&doc), nil
	}
	return nil, ErrNotFound
}

// storeError marks connectivity failures as unavailable and wraps the rest.
func (s *MongoStore) storeError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return unavailable(err, op)
	default:
		return errors.Wrap(err, op)
	}
}
