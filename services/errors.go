package services

import (
	"errors"
	"fmt"

	"minishop/store"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("upstream failure")
)

// fromStore maps store sentinels onto service errors. what names the entity
// for the message.
func fromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, store.ErrInsufficientStock):
		return fmt.Errorf("%w: not enough stock", ErrInvalidState)
	default:
		return err
	}
}
