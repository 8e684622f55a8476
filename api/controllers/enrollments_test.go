package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cybershaala/academy-backend/api/middleware"
	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/pkg/auth"
	"github.com/cybershaala/academy-backend/pkg/pagination"
)

type fakeEnrollmentLister struct {
	studentID string
	email     string
	params    pagination.Params
	items     []enrollments.EnrollmentDTO
	next      *string
	err       error
}

func (f *fakeEnrollmentLister) ListByStudent(_ context.Context, studentID, email string, params pagination.Params) ([]enrollments.EnrollmentDTO, *string, error) {
	f.studentID = studentID
	f.email = email
	f.params = params
	return f.items, f.next, f.err
}

func withClaims(req *http.Request, studentID, email string) *http.Request {
	claims := &auth.AccessTokenClaims{StudentID: studentID, Email: email}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestListEnrollments_Success(t *testing.T) {
	next := "cursor-token"
	lister := &fakeEnrollmentLister{
		items: []enrollments.EnrollmentDTO{{ID: uuid.New(), EnrollmentID: "ENR_1700000000000_ABC123"}},
		next:  &next,
	}
	handler := ListEnrollments(lister, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments?limit=5", nil)
	req = withClaims(req, "stu_1", "student@example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if lister.studentID != "stu_1" || lister.email != "student@example.com" {
		t.Fatalf("unexpected identity: %q %q", lister.studentID, lister.email)
	}
	if lister.params.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", lister.params.Limit)
	}

	var body struct {
		Data struct {
			Enrollments []enrollments.EnrollmentDTO `json:"enrollments"`
			NextCursor  *string                     `json:"nextCursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Data.Enrollments) != 1 {
		t.Fatalf("expected one enrollment, got %d", len(body.Data.Enrollments))
	}
	if body.Data.NextCursor == nil || *body.Data.NextCursor != next {
		t.Fatalf("expected next cursor %q, got %v", next, body.Data.NextCursor)
	}
}

func TestListEnrollments_MissingClaims(t *testing.T) {
	handler := ListEnrollments(&fakeEnrollmentLister{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rec.Code)
	}
}

func TestListEnrollments_LimitOutOfRange(t *testing.T) {
	handler := ListEnrollments(&fakeEnrollmentLister{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments?limit=9999", nil)
	req = withClaims(req, "stu_1", "student@example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized limit, got %d", rec.Code)
	}
}
