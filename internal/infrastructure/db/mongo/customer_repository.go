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

const collectionCustomers = "customers"

type CustomerRepository struct {
	col *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{col: db.Collection(collectionCustomers)}
}

type customerDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FullName    string             `bson:"fullName"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone"`
	Location    string             `bson:"location"`
	Status      string             `bson:"status"`
	Notes       string             `bson:"notes"`
	LastUpdated time.Time          `bson:"lastUpdated"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *customerDoc) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:          d.ID.Hex(),
		FullName:    d.FullName,
		Email:       d.Email,
		Phone:       d.Phone,
		Location:    d.Location,
		Status:      domain.LeadStatus(d.Status),
		Notes:       d.Notes,
		LastUpdated: d.LastUpdated.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func customerFilter(f ports.CustomerFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.Search != "" {
		q["$or"] = anyFieldContains(f.Search, "fullName", "email", "phone")
	}
	return q
}

func customerSortField(s ports.CustomerSort) string {
	if s == ports.SortByLastUpdated {
		return "lastUpdated"
	}
	return "createdAt"
}

func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := customerDoc{
		FullName:    c.FullName,
		Email:       c.Email,
		Phone:       c.Phone,
		Location:    c.Location,
		Status:      string(c.Status),
		Notes:       c.Notes,
		LastUpdated: c.LastUpdated,
		CreatedAt:   c.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Entity: "customer", Field: "email"}
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc customerDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CustomerRepository) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string, at time.Time) (*domain.Customer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(status), "notes": notes, "lastUpdated": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc customerDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("update customer status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CustomerRepository) Count(ctx context.Context, filter ports.CustomerFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, customerFilter(filter))
}

func (r *CustomerRepository) List(ctx context.Context, filter ports.CustomerFilter, sort ports.CustomerSort, limit int) ([]*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, customerFilter(filter), findOptions(customerSortField(sort), limit))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	out := make([]*domain.Customer, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *CustomerRepository) CountByDay(ctx context.Context, since time.Time) ([]domain.DayCount, error) {
	return countByDay(ctx, r.col, since)
}

func (r *CustomerRepository) CountByLocation(ctx context.Context) ([]domain.CategoryCount, error) {
	return countByField(ctx, r.col, "location")
}

func (r *CustomerRepository) CountByStatus(ctx context.Context) ([]domain.CategoryCount, error) {
	return countByField(ctx, r.col, "status")
}

func (r *CustomerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "lastUpdated", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

var _ ports.CustomerRepository = (*CustomerRepository)(nil)
