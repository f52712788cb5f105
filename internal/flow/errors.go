package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy rejects an intent that arrives while an attempt is in flight.
	ErrBusy = errors.New("an authentication attempt is already in progress")
	// ErrFinished rejects intents once a session has been established.
	ErrFinished = errors.New("already authenticated")
	// ErrNoProvider is returned by OAuth when no provider is configured.
	ErrNoProvider = errors.New("no oauth provider configured")
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindRequest
	KindOAuth
	KindProfileFetch
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRequest:
		return "request"
	case KindOAuth:
		return "oauth"
	case KindProfileFetch:
		return "profile_fetch"
	case KindStorage:
		return "storage"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the failure outcome of an attempt. Message is safe to show to
// the user; Err carries the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a flow *Error of kind k.
func IsKind(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}
