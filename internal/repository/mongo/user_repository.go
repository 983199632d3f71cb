package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
)

type userDocument struct {
	ID        string    `bson:"_id,omitempty"`
	FullName  string    `bson:"fullName,omitempty"`
	Email     string    `bson:"email,omitempty"`
	Password  string    `bson:"password,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

// UserRepository stores users as documents in a single collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collection string) repository.UserRepository {
	return &UserRepository{coll: db.Collection(collection)}
}

// Init ensures the unique email index exists.
func (r *UserRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert user %s: %w", user.Email, repository.ErrDuplicateEmail)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromDocument(doc), nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch domain.UserPatch) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "fullName", Value: patch.FullName},
		{Key: "password", Value: patch.PasswordHash},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context, projection domain.Projection) ([]domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{},
		options.Find().
			SetProjection(projectionDocument(projection)).
			SetSort(bson.D{{Key: "$natural", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, *fromDocument(doc))
	}
	return users, nil
}

// projectionDocument builds an inclusion projection; _id is always suppressed.
func projectionDocument(p domain.Projection) bson.D {
	doc := bson.D{}
	if p.FullName {
		doc = append(doc, bson.E{Key: "fullName", Value: 1})
	}
	if p.Email {
		doc = append(doc, bson.E{Key: "email", Value: 1})
	}
	if p.Password {
		doc = append(doc, bson.E{Key: "password", Value: 1})
	}
	return append(doc, bson.E{Key: "_id", Value: 0})
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromDocument(doc userDocument) *domain.User {
	return &domain.User{
		ID:           doc.ID,
		FullName:     doc.FullName,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
