package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

type leadFixture struct {
	svc       *LeadService
	customers *stubCustomerRepo
	contacts  *stubContactRepo
	idem      *stubIdempotency
	now       time.Time
}

func newLeadFixture() *leadFixture {
	f := &leadFixture{
		customers: newStubCustomerRepo(),
		contacts:  &stubContactRepo{},
		idem:      newStubIdempotency(),
		now:       time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewLeadService(f.customers, f.contacts, f.idem, discardLogger)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func validCustomerInput() ports.CaptureCustomerInput {
	return ports.CaptureCustomerInput{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Location: "Mumbai",
	}
}

func TestLeadService_CaptureCustomer(t *testing.T) {
	f := newLeadFixture()
	res, err := f.svc.CaptureCustomer(context.Background(), validCustomerInput())
	if err != nil {
		t.Fatalf("CaptureCustomer returned error: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatalf("first capture must not be a replay")
	}
	c := res.Customer
	if c.Status != domain.LeadNew {
		t.Fatalf("expected status new, got %s", c.Status)
	}
	if !c.CreatedAt.Equal(f.now) || !c.LastUpdated.Equal(f.now) {
		t.Fatalf("timestamps not set from clock: %v / %v", c.CreatedAt, c.LastUpdated)
	}
}

func TestLeadService_CaptureCustomer_Validation(t *testing.T) {
	f := newLeadFixture()
	cases := map[string]struct {
		mutate func(*ports.CaptureCustomerInput)
		field  string
	}{
		"missing name":     {func(in *ports.CaptureCustomerInput) { in.FullName = " " }, "fullName"},
		"bad email":        {func(in *ports.CaptureCustomerInput) { in.Email = "asha" }, "email"},
		"short phone":      {func(in *ports.CaptureCustomerInput) { in.Phone = "12345" }, "phone"},
		"non-digit phone":  {func(in *ports.CaptureCustomerInput) { in.Phone = "98765432ab" }, "phone"},
		"unknown location": {func(in *ports.CaptureCustomerInput) { in.Location = "Paris" }, "location"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validCustomerInput()
			tc.mutate(&in)
			_, err := f.svc.CaptureCustomer(context.Background(), in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
	if len(f.customers.customers) != 0 {
		t.Fatalf("invalid input must not be stored")
	}
}

func TestLeadService_CaptureCustomer_DuplicateEmail(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()
	if _, err := f.svc.CaptureCustomer(ctx, validCustomerInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := f.svc.CaptureCustomer(ctx, validCustomerInput())
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestLeadService_CaptureCustomer_IdempotentReplay(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()
	in := validCustomerInput()
	in.IdempotencyKey = "req-1"

	first, err := f.svc.CaptureCustomer(ctx, in)
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	second, err := f.svc.CaptureCustomer(ctx, in)
	if err != nil {
		t.Fatalf("replay returned error: %v", err)
	}
	if !second.AlreadyExisted || second.Customer.ID != first.Customer.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Customer.ID, second)
	}
	if len(f.customers.customers) != 1 {
		t.Fatalf("replay must not insert, have %d", len(f.customers.customers))
	}
}

func TestLeadService_CaptureCustomer_IdempotencyStoreDown(t *testing.T) {
	f := newLeadFixture()
	f.idem.lookupErr = errors.New("redis: connection refused")
	in := validCustomerInput()
	in.IdempotencyKey = "req-1"

	res, err := f.svc.CaptureCustomer(context.Background(), in)
	if err != nil {
		t.Fatalf("store outage must not fail capture, got %v", err)
	}
	if res.AlreadyExisted {
		t.Fatalf("lookup failure must be treated as a miss")
	}
}

func TestLeadService_SubmitContact(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()

	c, err := f.svc.SubmitContact(ctx, ports.SubmitContactInput{FirstName: "Ravi", Email: "ravi@example.com", Phone: "123", Location: "Delhi"})
	if err != nil {
		t.Fatalf("SubmitContact returned error: %v", err)
	}
	if c.ID == "" || !c.CreatedAt.Equal(f.now) {
		t.Fatalf("unexpected contact: %+v", c)
	}

	var ve *domain.ValidationError
	if _, err := f.svc.SubmitContact(ctx, ports.SubmitContactInput{FirstName: "Ravi"}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLeadService_UpdateStatusAndListByStatus(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()
	res, _ := f.svc.CaptureCustomer(ctx, validCustomerInput())

	f.now = f.now.Add(time.Hour)
	updated, err := f.svc.UpdateStatus(ctx, res.Customer.ID, domain.LeadNotAnswered, "call back tomorrow")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != domain.LeadNotAnswered || updated.Notes != "call back tomorrow" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.LastUpdated.Equal(f.now) {
		t.Fatalf("lastUpdated not refreshed")
	}

	list, err := f.svc.ListByStatus(ctx, domain.LeadNotAnswered)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one customer, got %d, %v", len(list), err)
	}
	empty, err := f.svc.ListByStatus(ctx, domain.LeadClosed)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", empty, err)
	}

	var ve *domain.ValidationError
	if _, err := f.svc.UpdateStatus(ctx, res.Customer.ID, "archived", ""); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := f.svc.ListByStatus(ctx, "archived"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, "missing", domain.LeadClosed, ""); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestLeadService_Stats(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()

	stats, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	for _, key := range []string{"total", "new", "contacted", "follow-up", "closed"} {
		if v, ok := stats[key]; !ok || v != 0 {
			t.Fatalf("expected %q = 0 on empty store, got %v (present=%v)", key, v, ok)
		}
	}

	a, _ := f.svc.CaptureCustomer(ctx, validCustomerInput())
	in := validCustomerInput()
	in.Email = "b@example.com"
	f.svc.CaptureCustomer(ctx, in)
	f.svc.UpdateStatus(ctx, a.Customer.ID, domain.LeadInterested, "")

	stats, _ = f.svc.Stats(ctx)
	if stats["total"] != 2 || stats["new"] != 1 || stats["interested"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}
