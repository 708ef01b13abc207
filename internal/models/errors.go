// ===============================
// internal/models/errors.go - Typed error kinds for management surfaces
// ===============================

package models

import (
	"errors"
	"fmt"
)

// NotFoundError marks a missing entity or a dangling reference. Resource
// names the entity kind so handlers can distinguish "schedule not found"
// from "its playlist is gone".
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + "_not_found"
	}
	return fmt.Sprintf("%s_not_found: %s", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError carries field-level detail so administrators get
// actionable messages instead of a bare 400.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation_failed: %v", e.Fields)
}

func NewValidation(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DependencyError blocks deletes that would orphan an active reference.
type DependencyError struct {
	Resource   string
	ReferredBy string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s_in_use_by_%s", e.Resource, e.ReferredBy)
}

func IsDependency(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}

// ConflictError rejects an operation whose input contradicts current state,
// e.g. a reorder request that is not a permutation of the playlist.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(message string) error {
	return &ConflictError{Message: message}
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
