package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Password   string             `bson:"password"`
	Email      string             `bson:"email,omitempty"`
	FullName   string             `bson:"fullName,omitempty"`
	Phone      string             `bson:"phone,omitempty"`
	Role       string             `bson:"role"`
	Status     string             `bson:"status"`
	Department string             `bson:"department"`
	Position   string             `bson:"position"`
	HireDate   time.Time          `bson:"hireDate"`
	LastLogin  *time.Time         `bson:"lastLogin,omitempty"`
	IsActive   bool               `bson:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		Username:   u.Username,
		Password:   u.PasswordHash,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Role:       string(u.Role),
		Status:     string(u.Status),
		Department: u.Department,
		Position:   u.Position,
		HireDate:   u.HireDate,
		LastLogin:  u.LastLogin,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (d *userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Email:        d.Email,
		FullName:     d.FullName,
		Phone:        d.Phone,
		Role:         domain.Role(d.Role),
		Status:       domain.UserStatus(d.Status),
		Department:   d.Department,
		Position:     d.Position,
		HireDate:     d.HireDate.UTC(),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.LastLogin != nil {
		at := d.LastLogin.UTC()
		u.LastLogin = &at
	}
	return u
}

// userFilter translates a UserFilter to a query. Role wins over ExcludeRole
// when both are set.
func userFilter(f ports.UserFilter) bson.M {
	q := bson.M{}
	if f.Username != "" {
		q["username"] = f.Username
	}
	if f.Email != "" {
		q["email"] = f.Email
	}
	switch {
	case f.Role != "":
		q["role"] = string(f.Role)
	case f.ExcludeRole != "":
		q["role"] = bson.M{"$ne": string(f.ExcludeRole)}
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.Search != "" {
		q["$or"] = anyFieldContains(f.Search, "username", "fullName", "email")
	}
	return q
}

// userPatchUpdate builds the update document for a patch. An empty email is
// unset so the sparse unique index keeps ignoring it.
func userPatchUpdate(p domain.UserPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	str := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	str("username", p.Username)
	str("fullName", p.FullName)
	str("phone", p.Phone)
	str("department", p.Department)
	str("position", p.Position)
	if p.Email != nil {
		if *p.Email == "" {
			unset["email"] = ""
		} else {
			set["email"] = *p.Email
		}
	}
	if p.Role != nil {
		set["role"] = string(*p.Role)
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
		set["isActive"] = *p.Status == domain.StatusActive
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *UserRepository) conflict(err error) error {
	return &domain.ConflictError{Entity: "user", Field: duplicateField(err, "username", "username", "email")}
}

func (r *UserRepository) FindOne(ctx context.Context, filter ports.UserFilter) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, userFilter(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newUserDoc(user)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, r.conflict(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	return r.findOneAndUpdate(ctx, id, userPatchUpdate(patch, time.Now().UTC()))
}

// ToggleStatus flips the status server-side in one update so concurrent
// toggles cannot lose a write.
func (r *UserRepository) ToggleStatus(ctx context.Context, id string) (*domain.User, error) {
	flip := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", string(domain.StatusActive)}},
				string(domain.StatusInactive),
				string(domain.StatusActive),
			}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
		{{Key: "$set", Value: bson.M{
			"isActive": bson.M{"$eq": bson.A{"$status", string(domain.StatusActive)}},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, flip)
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, id string, update any) (*domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, r.conflict(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"lastLogin": at}})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *UserRepository) Count(ctx context.Context, filter ports.UserFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, userFilter(filter))
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserFilter, limit int) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, userFilter(filter), findOptions("createdAt", limit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserRepository) CountByDay(ctx context.Context, since time.Time) ([]domain.DayCount, error) {
	return countByDay(ctx, r.col, since)
}

func (r *UserRepository) CountByRole(ctx context.Context) ([]domain.CategoryCount, error) {
	return countByField(ctx, r.col, "role")
}

// EnsureIndexes creates the unique and sort indexes of the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

var _ ports.UserRepository = (*UserRepository)(nil)
