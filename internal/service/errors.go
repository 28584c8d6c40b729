package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Code identifies a domain error at the transport boundary.
type Code string

const (
	CodeAccessDenied         Code = "access-denied"
	CodeInternalError        Code = "internal-error"
	CodeContractNotFound     Code = "contract-not-found"
	CodeJobNotFound          Code = "job-not-found"
	CodeJobAlreadyPaid       Code = "job-already-paid"
	CodeJobNotPaid           Code = "job-not-paid"
	CodeTerminatedContract   Code = "contract-terminated"
	CodeNotEnoughBalance     Code = "not-enough-balance"
	CodeDepositLimitExceeded Code = "deposit-limit-exceeded"
	CodeClientNotFound       Code = "client-not-found"
	CodeInvalidAmount        Code = "invalid-amount"
)

// Error is a domain error: an expected business-rule violation that is
// surfaced to the caller verbatim. Anything else raised inside a service is
// normalized to ErrInternal before it leaves the service layer.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches by code so errors.Is works against the constructors below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func ErrAccessDenied() *Error {
	return &Error{Code: CodeAccessDenied, Message: "You do not have access to this resource or operation."}
}

func ErrInternal() *Error {
	return &Error{Code: CodeInternalError, Message: "An unknown error has occurred."}
}

func ErrContractNotFound(id int64) *Error {
	return &Error{Code: CodeContractNotFound, Message: fmt.Sprintf("No contract found with id %d.", id)}
}

func ErrJobNotFound(id int64) *Error {
	return &Error{Code: CodeJobNotFound, Message: fmt.Sprintf("No job found with id %d.", id)}
}

func ErrJobAlreadyPaid() *Error {
	return &Error{Code: CodeJobAlreadyPaid, Message: "This job is already paid."}
}

func ErrJobNotPaid() *Error {
	return &Error{Code: CodeJobNotPaid, Message: "This job has not been paid yet."}
}

func ErrTerminatedContract() *Error {
	return &Error{Code: CodeTerminatedContract, Message: "The job's contract is terminated."}
}

func ErrNotEnoughBalance() *Error {
	return &Error{Code: CodeNotEnoughBalance, Message: "Not enough balance to pay for this job."}
}

func ErrDepositLimitExceeded(limit decimal.Decimal) *Error {
	return &Error{Code: CodeDepositLimitExceeded, Message: fmt.Sprintf("Cannot deposit more than the allowed limit of %s.", limit.StringFixed(2))}
}

func ErrClientNotFound(id int64) *Error {
	return &Error{Code: CodeClientNotFound, Message: fmt.Sprintf("No client found with id %d.", id)}
}

func ErrInvalidAmount() *Error {
	return &Error{Code: CodeInvalidAmount, Message: "The amount should be a valid number."}
}

// AsDomain extracts a domain error, if err carries one.
func AsDomain(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
