package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

// ValidationError collects every violated field. Keys are field paths such as
// "ingredient_sections[0].ingredients[1].name".
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// Paths returns the violated field paths in sorted order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, p := range e.Paths() {
		parts = append(parts, fmt.Sprintf("%s: %s", p, strings.Join(e.Fields[p], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidFilterError reports an unknown or malformed list filter value.
type InvalidFilterError struct {
	Param string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %s", e.Value, e.Param)
}

// PermissionError is raised when an authenticated identity may not perform an action.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return "you do not have permission to " + e.Action
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// UpstreamStorageError wraps image or database failures. Its message is never
// shown to clients.
type UpstreamStorageError struct {
	Op  string
	Err error
}

func (e *UpstreamStorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamStorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	var upstream *UpstreamStorageError
	var verr *ValidationError
	var perm *PermissionError
	var nf *NotFoundError
	if errors.As(err, &upstream) || errors.As(err, &verr) || errors.As(err, &perm) || errors.As(err, &nf) {
		return err
	}
	return &UpstreamStorageError{Op: op, Err: err}
}
