package mongostore

import (
	"context"
	"errors"
	"fmt"

	"connectsphere/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommentStore хранит комментарии в коллекции comments
type CommentStore struct {
	coll *mongo.Collection
}

// NewCommentStore создает новый экземпляр CommentStore
func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{coll: db.Collection(CommentsCollection)}
}

// CreateComment добавляет комментарий
func (s *CommentStore) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	postID, err := primitive.ObjectIDFromHex(comment.PostID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", comment.PostID, err)
	}
	userID, err := primitive.ObjectIDFromHex(comment.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", comment.UserID, err)
	}

	doc := commentDoc{
		ID:   primitive.NewObjectID(),
		Post: postID,
		User: userID,
		Text: comment.Text,
	}
	doc.CreatedAt = now()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return doc.toModel(), nil
}

// GetCommentByID ищет комментарий по идентификатору
func (s *CommentStore) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return doc.toModel(), nil
}

// ListComments возвращает страницу комментариев поста, новые первыми
func (s *CommentStore) ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error) {
	oid, err := parseID(postID)
	if err != nil {
		return []models.Comment{}, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"post": oid}, pageOptions(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, *docs[i].toModel())
	}
	return comments, nil
}

// CountComments считает комментарии поста или все комментарии
func (s *CommentStore) CountComments(ctx context.Context, postID string) (int64, error) {
	query := bson.M{}
	if postID != "" {
		oid, err := parseID(postID)
		if err != nil {
			return 0, nil
		}
		query["post"] = oid
	}

	count, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

// CountCommentsByPosts считает комментарии для нескольких постов одной агрегацией
func (s *CommentStore) CountCommentsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	oids := make([]primitive.ObjectID, 0, len(postIDs))
	for _, id := range postIDs {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"post": bson.M{"$in": oids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$post", "total": bson.M{"$sum": 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Total int64              `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode comment counts: %w", err)
	}

	for _, row := range rows {
		counts[row.ID.Hex()] = row.Total
	}
	return counts, nil
}

// DeleteComment удаляет комментарий
func (s *CommentStore) DeleteComment(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteCommentsByPost удаляет все комментарии поста
func (s *CommentStore) DeleteCommentsByPost(ctx context.Context, postID string) (int64, error) {
	oid, err := parseID(postID)
	if err != nil {
		return 0, nil
	}

	res, err := s.coll.DeleteMany(ctx, bson.M{"post": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
