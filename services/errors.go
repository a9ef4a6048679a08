package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/baniakuntest4-alt/arhanud/models"
)

// ValidationError reports malformed or incomplete input. Fields maps a field
// name to what is wrong with it.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError reports a transition attempted on a request that is no
// longer pending. The caller holds a stale view and should refresh.
type InvalidStateError struct {
	RequestID string
	Status    models.RequestStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("request %s is already %s", e.RequestID, e.Status)
}

// AuthorizationError reports a caller acting outside its role.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// PropagationError means the verification decision was persisted but the
// follow-up record update failed. The decision stands; the side effect needs
// manual reconciliation.
type PropagationError struct {
	RequestID string
	Err       error
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("request %s verified but record update failed: %v", e.RequestID, e.Err)
}

func (e *PropagationError) Unwrap() error { return e.Err }
