package service

import (
	"errors"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
)

// Kind discriminates domain failures so controllers can pick an HTTP
// status without parsing message text.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindIneligible
	KindAccessDenied
	KindNoRecipients
	KindEmptyUpdate
)

// FieldError is one field-level validation issue.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified domain failure. Anything a service returns that
// is not an *Error is an unexpected storage/integration failure.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string { return e.Message }

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Ineligible(message string) *Error {
	return &Error{Kind: KindIneligible, Message: message}
}

func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Message: message}
}

func NoRecipients(message string) *Error {
	return &Error{Kind: KindNoRecipients, Message: message}
}

func EmptyUpdate(message string) *Error {
	return &Error{Kind: KindEmptyUpdate, Message: message}
}

// AsError unwraps err into a domain *Error when it is one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CanAccess is the single ownership predicate used by every read path:
// admins see everything, everyone else only resources they own.
func CanAccess(role string, ownerID *uint, userID uint) bool {
	if role == model.RoleAdmin {
		return true
	}
	return ownerID != nil && *ownerID == userID
}
