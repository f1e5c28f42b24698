package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

const collectionContacts = "contacts"

type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{col: db.Collection(collectionContacts)}
}

type contactDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Location  string             `bson:"location"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *contactDoc) toDomain() *domain.Contact {
	return &domain.Contact{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		Email:     d.Email,
		Phone:     d.Phone,
		Location:  d.Location,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func contactFilter(f ports.ContactFilter) bson.M {
	if f.Search == "" {
		return bson.M{}
	}
	return bson.M{"$or": anyFieldContains(f.Search, "firstName", "email", "phone")}
}

func (r *ContactRepository) Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := contactDoc{
		FirstName: c.FirstName,
		Email:     c.Email,
		Phone:     c.Phone,
		Location:  c.Location,
		CreatedAt: c.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Entity: "contact", Field: "email"}
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ContactRepository) Count(ctx context.Context, filter ports.ContactFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, contactFilter(filter))
}

func (r *ContactRepository) List(ctx context.Context, filter ports.ContactFilter, limit int) ([]*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, contactFilter(filter), findOptions("createdAt", limit))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	out := make([]*domain.Contact, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ContactRepository) CountByDay(ctx context.Context, since time.Time) ([]domain.DayCount, error) {
	return countByDay(ctx, r.col, since)
}

func (r *ContactRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

var _ ports.ContactRepository = (*ContactRepository)(nil)
