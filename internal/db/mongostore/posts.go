package mongostore

import (
	"context"
	"errors"
	"fmt"

	"connectsphere/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxToggleAttempts ограничивает повторы при гонке двух переключений
const maxToggleAttempts = 3

// список лайков не нужен при чтении поста
var withoutLikes = bson.M{"likes": 0}

// PostStore хранит посты в коллекции posts
type PostStore struct {
	coll *mongo.Collection
}

// NewPostStore создает новый экземпляр PostStore
func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{coll: db.Collection(PostsCollection)}
}

// CreatePost создает пост
func (s *PostStore) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	userID, err := primitive.ObjectIDFromHex(post.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid author id %q: %w", post.UserID, err)
	}

	doc := postDoc{
		ID:      primitive.NewObjectID(),
		User:    userID,
		Content: post.Content,
		File:    fileDoc{Name: post.File.Name, URL: post.File.URL},
		Likes:   []primitive.ObjectID{},
	}
	doc.CreatedAt = now()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return doc.toModel(), nil
}

// GetPostByID ищет пост по идентификатору
func (s *PostStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc postDoc
	opts := options.FindOne().SetProjection(withoutLikes)
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return doc.toModel(), nil
}

func postFilter(filter models.PostFilter) (bson.M, error) {
	query := bson.M{}
	if filter.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid author id %q: %w", filter.UserID, err)
		}
		query["user"] = oid
	}
	return query, nil
}

// ListPosts возвращает страницу постов, новые первыми
func (s *PostStore) ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error) {
	query, err := postFilter(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := s.coll.Find(ctx, query, pageOptions(page).SetProjection(withoutLikes))
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, *docs[i].toModel())
	}
	return posts, nil
}

// CountPosts считает посты по фильтру
func (s *PostStore) CountPosts(ctx context.Context, filter models.PostFilter) (int64, error) {
	query, err := postFilter(filter)
	if err != nil {
		return 0, err
	}
	count, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// UpdatePost меняет переданные поля поста
func (s *PostStore) UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": now()}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.File != nil {
		set["file"] = fileDoc{Name: upd.File.Name, URL: upd.File.URL}
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutLikes)
	var doc postDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return doc.toModel(), nil
}

// DeletePost удаляет пост
func (s *PostStore) DeletePost(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ToggleLike ставит или снимает лайк условным обновлением одного документа:
// $addToSet срабатывает только без лайка, $pull только с ним
func (s *PostStore) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	pid, err := parseID(postID)
	if err != nil {
		return false, 0, err
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, 0, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likesCount": 1})

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		var doc postDoc

		err := s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": pid, "likes": bson.M{"$ne": uid}},
			bson.M{"$addToSet": bson.M{"likes": uid}, "$inc": bson.M{"likesCount": 1}},
			opts,
		).Decode(&doc)
		if err == nil {
			return true, doc.LikesCount, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, fmt.Errorf("failed to like post: %w", err)
		}

		err = s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": pid, "likes": uid},
			bson.M{"$pull": bson.M{"likes": uid}, "$inc": bson.M{"likesCount": -1}},
			opts,
		).Decode(&doc)
		if err == nil {
			return false, doc.LikesCount, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, fmt.Errorf("failed to unlike post: %w", err)
		}

		// Ни одно условие не сработало: поста нет или параллельный запрос успел раньше
		count, err := s.coll.CountDocuments(ctx, bson.M{"_id": pid})
		if err != nil {
			return false, 0, fmt.Errorf("failed to check post: %w", err)
		}
		if count == 0 {
			return false, 0, models.ErrNotFound
		}
	}

	return false, 0, fmt.Errorf("like toggle on post %s did not settle after %d attempts", postID, maxToggleAttempts)
}
