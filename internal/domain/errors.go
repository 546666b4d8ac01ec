package domain

import (
	"errors"
	"fmt"
	"strings"
)

// KeyPrefix namespaces every key the service writes to the shared store.
const KeyPrefix = "coach:"

var (
	// ErrNoIndexFound signals that no candidate location holds a fragment index.
	ErrNoIndexFound = errors.New("no fragment index found")
	// ErrStoreLoad signals that an index exists but could not be opened or decoded.
	ErrStoreLoad = errors.New("fragment store load failed")
	// ErrKnowledgeBaseUnavailable signals that a knowledge base has no usable content.
	ErrKnowledgeBaseUnavailable = errors.New("knowledge base unavailable")
	// ErrInvalidLevel signals an unknown training level.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrInvalidRequest signals a malformed request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrGenerationFailed signals a generation provider failure or timeout.
	ErrGenerationFailed = errors.New("generation provider error")
	// ErrGenerationQuotaExceeded signals an exhausted generation token budget.
	ErrGenerationQuotaExceeded = errors.New("generation quota exceeded")
)

// UnavailableError wraps ErrKnowledgeBaseUnavailable with remediation details.
type UnavailableError struct {
	KnowledgeBase string
	Status        string
	Available     []string
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("%s: no %q fragments (%s)", ErrKnowledgeBaseUnavailable.Error(), e.KnowledgeBase, e.Status)
	if len(e.Available) > 0 {
		msg += "; available: " + strings.Join(e.Available, ", ")
	}
	return msg
}

func (e *UnavailableError) Unwrap() error { return ErrKnowledgeBaseUnavailable }

// NewUnavailable creates an unavailable knowledge base error.
func NewUnavailable(kb, status string, available []string) error {
	return &UnavailableError{KnowledgeBase: kb, Status: status, Available: available}
}
