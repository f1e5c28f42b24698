package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubLeadService struct {
	ports.LeadService
	captureFn func(ctx context.Context, in ports.CaptureCustomerInput) (*ports.CaptureResult, error)
	updateFn  func(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Customer, error)
}

func (s *stubLeadService) CaptureCustomer(ctx context.Context, in ports.CaptureCustomerInput) (*ports.CaptureResult, error) {
	return s.captureFn(ctx, in)
}

func (s *stubLeadService) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Customer, error) {
	return s.updateFn(ctx, id, status, notes)
}

const validCustomer = `{"fullName":"Asha Rao","email":"asha@example.com","phone":"9876543210","location":"Chennai"}`

func TestLeadHandler_CaptureCustomer_Created(t *testing.T) {
	stub := &stubLeadService{
		captureFn: func(_ context.Context, in ports.CaptureCustomerInput) (*ports.CaptureResult, error) {
			if in.IdempotencyKey != "k-1" {
				t.Fatalf("idempotency key not forwarded: %q", in.IdempotencyKey)
			}
			return &ports.CaptureResult{Customer: &domain.Customer{ID: "c1", FullName: in.FullName, Status: domain.LeadNew}}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/contact", validCustomer)
	c.Request().Header.Set("Idempotency-Key", " k-1 ")

	if err := NewLeadHandler(stub).CaptureCustomer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp customerCreatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Customer == nil || resp.Customer.ID != "c1" || resp.Message == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLeadHandler_CaptureCustomer_ReplayIs200(t *testing.T) {
	stub := &stubLeadService{
		captureFn: func(context.Context, ports.CaptureCustomerInput) (*ports.CaptureResult, error) {
			return &ports.CaptureResult{Customer: &domain.Customer{ID: "c1"}, AlreadyExisted: true}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/contact", validCustomer)

	if err := NewLeadHandler(stub).CaptureCustomer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLeadHandler_CaptureCustomer_Validation(t *testing.T) {
	stub := &stubLeadService{
		captureFn: func(context.Context, ports.CaptureCustomerInput) (*ports.CaptureResult, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil
		},
	}
	cases := map[string]struct {
		body  string
		field string
	}{
		"missing name":   {`{"email":"a@b.io","phone":"9876543210","location":"Delhi"}`, "fullName"},
		"bad email":      {`{"fullName":"A","email":"nope","phone":"9876543210","location":"Delhi"}`, "email"},
		"letters phone":  {`{"fullName":"A","email":"a@b.io","phone":"98765abcde","location":"Delhi"}`, "phone"},
		"other location": {`{"fullName":"A","email":"a@b.io","phone":"9876543210","location":"Pune"}`, "location"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/contact", tc.body)
			err := NewLeadHandler(stub).CaptureCustomer(c)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestLeadHandler_UpdateStatus(t *testing.T) {
	stub := &stubLeadService{
		updateFn: func(_ context.Context, id string, status domain.LeadStatus, notes string) (*domain.Customer, error) {
			if id != "c1" || status != domain.LeadFollowUp || notes != "call friday" {
				t.Fatalf("unexpected args: %s %s %s", id, status, notes)
			}
			return &domain.Customer{ID: id, Status: status, Notes: notes}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPatch, "/contact/update-status/c1", `{"status":"follow-up","notes":"call friday"}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := NewLeadHandler(stub).UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUpdateUserRequest_ToPatch(t *testing.T) {
	role, status, dept := "manager", "inactive", "Ops"
	p := updateUserRequest{Role: &role, Status: &status, Department: &dept}.toPatch()

	if p.Role == nil || *p.Role != domain.RoleManager {
		t.Fatalf("role not mapped: %v", p.Role)
	}
	if p.Status == nil || *p.Status != domain.StatusInactive {
		t.Fatalf("status not mapped: %v", p.Status)
	}
	if p.Username != nil || p.Email != nil {
		t.Fatalf("unset fields must stay nil")
	}
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&createUserRequest{Username: "bob", Password: "123", Email: "bad"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "password" {
		t.Fatalf("expected first field to be password, got %q", ve.Field)
	}
	if len(ve.Details) != 2 {
		t.Fatalf("expected two messages, got %v", ve.Details)
	}
	if !strings.Contains(ve.Msg, "email must be a valid email") {
		t.Fatalf("unexpected message: %s", ve.Msg)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	h := NewHealthHandlerWithChecks(map[string]DependencyCheck{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	c, rec := newJSONContext(http.MethodGet, "/health/ready", "")

	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["redis"].Status != "unhealthy" || resp.Dependencies["mongodb"].Status != "ok" {
		t.Fatalf("unexpected readiness: %+v", resp)
	}
}
