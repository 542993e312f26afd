package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

const (
	usersCollection = "users"

	idNumberIndex      = "id_number_unique"
	accountNumberIndex = "account_number_unique"
)

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	IDNumber      string             `bson:"id_number"`
	AccountNumber string             `bson:"account_number"`
	PasswordHash  string             `bson:"password_hash"`
	Role          string             `bson:"role"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:            mu.ID.Hex(),
		Name:          mu.Name,
		IDNumber:      mu.IDNumber,
		AccountNumber: mu.AccountNumber,
		PasswordHash:  mu.PasswordHash,
		Role:          domain.Role(mu.Role),
		CreatedAt:     mu.CreatedAt.UTC(),
		UpdatedAt:     mu.UpdatedAt.UTC(),
	}
}

// Create validates and inserts the user. Timestamps and ID are assigned here.
// A unique index violation is returned as *domain.ConflictError.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Mongo stores milliseconds; truncate so the returned record matches a re-read.
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoUser{
		ID:            primitive.NewObjectID(),
		Name:          user.Name,
		IDNumber:      user.IDNumber,
		AccountNumber: user.AccountNumber,
		PasswordHash:  user.PasswordHash,
		Role:          string(user.Role),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if conflict := conflictFromWriteError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// conflictFromWriteError maps a duplicate key error to the field whose unique
// index was violated. It returns nil for any other error.
func conflictFromWriteError(err error) *domain.ConflictError {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, idNumberIndex), strings.Contains(msg, "id_number"):
		return &domain.ConflictError{Field: domain.FieldIDNumber}
	case strings.Contains(msg, accountNumberIndex), strings.Contains(msg, "account_number"):
		return &domain.ConflictError{Field: domain.FieldAccountNumber}
	default:
		return &domain.ConflictError{Field: "record"}
	}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// FindByID looks up a user by hex ObjectID. Malformed IDs are reported as not found.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"account_number": accountNumber})
}

func (r *UserRepository) FindByIDNumberOrAccount(ctx context.Context, idNumber, accountNumber string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"id_number": idNumber},
		bson.M{"account_number": accountNumber},
	}})
}

// ListByRole returns users with the given role, oldest first.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"role": string(role)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]*domain.User, 0)
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// EnsureIndexes creates the unique identity indexes and the role lookup index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id_number", Value: 1}},
			Options: options.Index().SetName(idNumberIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "account_number", Value: 1}},
			Options: options.Index().SetName(accountNumberIndex).SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
