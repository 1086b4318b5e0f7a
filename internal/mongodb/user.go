package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sanLimbu/taskboard-api/internal"
)

// User represents the repository used for interacting with User documents.
type User struct {
	users *mongo.Collection
	now   func() time.Time
}

// NewUser instantiates the User repository.
func NewUser(database *mongo.Database) *User {
	return &User{
		users: database.Collection(usersCollection),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create inserts a new user document, the unique email index rejects duplicates.
func (u *User) Create(ctx context.Context, params internal.CreateUserParams) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Create").End()

	now := u.now()

	doc := userDocument{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Email:     params.Email,
		Password:  params.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := u.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return internal.User{}, internal.NewFieldErrorf(internal.ErrorCodeConflict, "email", "already exists")
		}

		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "users.InsertOne")
	}

	return doc.user(), nil
}

// Find returns the requested user.
func (u *User) Find(ctx context.Context, id string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Find").End()

	return u.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail returns the user registered with email.
func (u *User) FindByEmail(ctx context.Context, email string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.FindByEmail").End()

	return u.findOne(ctx, bson.M{"email": email})
}

func (u *User) findOne(ctx context.Context, filter bson.M) (internal.User, error) {
	var doc userDocument

	if err := u.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return internal.User{}, notFound(err, "user not found")
	}

	return doc.user(), nil
}
