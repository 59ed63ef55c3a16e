package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"account-service/internal/db"
	"account-service/internal/domain/entities"
	"account-service/internal/domain/repositories"
)

const usersCollection = "users"

type UserRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewUserRepository(client *mongo.Client, database string) *UserRepository {
	return &UserRepository{
		client: client,
		coll:   db.GetCollection(client, database, usersCollection),
	}
}

// EnsureIndexes creates the unique index on email.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *entities.ValidatedUser) (*entities.User, error) {
	doc, err := newUserDocument(user.GetUser())
	if err != nil {
		return nil, err
	}
	doc.Id = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateError(err)
	}

	return doc.toEntity(), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*entities.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]*entities.User, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toEntity())
	}
	return users, cursor.Err()
}

func (r *UserRepository) FindById(ctx context.Context, id string) (*entities.User, error) {
	objectID, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// Update replaces the stored document so that cleared OTP fields disappear.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	doc, err := newUserDocument(user)
	if err != nil {
		return nil, err
	}

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.Id}, doc)
	if err != nil {
		return nil, translateError(err)
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, email *string) (*entities.User, error) {
	objectID, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	set := bson.M{"updatedAt": time.Now()}
	if name != nil {
		set["name"] = *name
	}
	if email != nil {
		set["email"] = *email
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*entities.User, error) {
	objectID, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var doc userDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entities.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// parseID reports false for strings that are not a 24-character hex ObjectID.
// Such ids can never match a record.
func parseID(id string) (primitive.ObjectID, bool) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return objectID, true
}

func translateError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateEmail
	}
	return err
}

var _ repositories.UserRepository = (*UserRepository)(nil)
