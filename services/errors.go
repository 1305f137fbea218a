// services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Expected, recoverable conditions reported to callers as typed values.
// Handlers branch on these with errors.Is; anything wrapped in
// ErrStoreUnavailable is a persistence failure, not a business outcome.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrUnknownReferrer   = errors.New("referrer not found")
	ErrSelfReferral      = errors.New("self referral not allowed")
	ErrAlreadyReferred   = errors.New("user already has a referrer")
	ErrAlreadySubmitted  = errors.New("task already submitted or approved")
	ErrCooldownActive    = errors.New("recurring task cooldown has not elapsed")
	ErrInvalidTransition = errors.New("task state does not allow this operation")
	ErrNotApproved       = errors.New("task is not approved for claiming")
	ErrAlreadyClaimed    = errors.New("task reward already claimed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// domainErrs lets storeErr pass typed results through untouched.
var domainErrs = []error{
	ErrUserNotFound, ErrTaskNotFound, ErrUnknownReferrer, ErrSelfReferral,
	ErrAlreadyReferred, ErrAlreadySubmitted, ErrCooldownActive,
	ErrInvalidTransition, ErrNotApproved, ErrAlreadyClaimed, ErrInvalidInput,
}

// storeErr wraps an unexpected persistence error as ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, de := range domainErrs {
		if errors.Is(err, de) {
			return err
		}
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
