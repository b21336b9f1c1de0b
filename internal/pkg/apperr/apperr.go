package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate unique value or an
	// already-existing one-shot resource.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates insufficient privileges.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream indicates the external prediction service is
	// unreachable or unhealthy.
	ErrUpstream = errors.New("upstream unavailable")
)

// FieldErrors is a validation failure carrying every failing field,
// not just the first one.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Unwrap() error { return ErrValidation }

// Validation builds a FieldErrors from field->message pairs.
func Validation(fields map[string]string) error {
	return &FieldErrors{Fields: fields}
}

// ValidationField is the single-field convenience form.
func ValidationField(field, msg string) error {
	return &FieldErrors{Fields: map[string]string{field: msg}}
}

func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func Conflict(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConflict)
}

func Unauthorized(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrUnauthorized)
}

func Forbidden(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrForbidden)
}

func Upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// FromDB maps persistence failures into the taxonomy: record-not-found
// becomes ErrNotFound and a Postgres unique violation becomes ErrConflict.
// Anything else passes through as an internal error.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// HTTPStatus maps a taxonomy error to its response status. Unknown
// errors are internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUpstream):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FieldMap extracts the per-field messages when err is a FieldErrors.
func FieldMap(err error) map[string]string {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return fe.Fields
	}
	return nil
}
