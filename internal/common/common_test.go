package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NotFound("Quiz does not exist"), http.StatusNotFound},
		{Conflict("Display ID already exists"), http.StatusConflict},
		{Invalid("Invalid score"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", Forbidden("nope")), http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusFromError(c.err); got != c.want {
			t.Errorf("HTTPStatusFromError(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(fmt.Errorf("ctx: %w", BadRequest("Invalid spj"))); got != "Invalid spj" {
		t.Fatalf("PublicMessage = %q", got)
	}
	if got := PublicMessage(errors.New("pq: connection reset")); got != ErrInternalServer.Error() {
		t.Fatalf("internal errors must not leak, got %q", got)
	}
	if got := PublicMessage(fmt.Errorf("sqlQuizRepository.List: %w", ErrNotFound)); got != ErrNotFound.Error() {
		t.Fatalf("wrapped sentinel should report its kind only, got %q", got)
	}
}

func TestUniqueViolationIsAGenericConflict(t *testing.T) {
	err := fmt.Errorf("findOrCreateTag insert: %w", &pgconn.PgError{
		Code:    "23505",
		Message: `duplicate key value violates unique constraint "quiz_tags_name_key"`,
	})
	if got := HTTPStatusFromError(err); got != http.StatusConflict {
		t.Fatalf("status = %d", got)
	}
	if got := PublicMessage(err); got != ErrConflict.Error() {
		t.Fatalf("driver text must not reach the client, got %q", got)
	}

	rec := httptest.NewRecorder()
	RespondWithErr(rec, err)
	if rec.Code != http.StatusConflict || strings.Contains(rec.Body.String(), "quiz_tags_name_key") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRespondWithErrEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithErr(rec, Conflict("Display ID already exists"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "error" || body["data"] != "Display ID already exists" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRespondWithDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithData(rec, http.StatusOK, Page[string]{Results: []string{"a"}, Total: 3})

	var body struct {
		Error *string      `json:"error"`
		Data  Page[string] `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != nil || body.Data.Total != 3 || len(body.Data.Results) != 1 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

type sampleInput struct {
	Title     string `json:"title" validate:"required,max=1024"`
	TimeLimit int    `json:"time_limit" validate:"gte=1,lte=60000"`
}

func TestValidateInput(t *testing.T) {
	err := ValidateInput(sampleInput{TimeLimit: 1000})
	if err == nil || err.Error() != "title is required" {
		t.Fatalf("ValidateInput = %v, want title is required", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation kind")
	}

	err = ValidateInput(sampleInput{Title: "A+B", TimeLimit: 0})
	if err == nil || err.Error() != "time_limit must be greater than or equal to 1" {
		t.Fatalf("ValidateInput = %v", err)
	}

	if err := ValidateInput(sampleInput{Title: "A+B", TimeLimit: 1000}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}
