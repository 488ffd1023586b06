// Package shared holds cross-module plumbing: the domain error
// taxonomy, request identity context, pagination and the bearer-token
// store.
package shared

import "errors"

// Sentinel errors for the domain layer. Services wrap these with
// fmt.Errorf("...: %w", ...) so handlers can map them to HTTP responses
// while keeping a human-readable message.
var (
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a missing field, non-positive quantity or
	// amount, wrong product type for an operation, or an over-receipt
	// against a purchase plan.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientStock indicates stock below the requested quantity;
	// the wrapping message names the product and the amounts.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInsufficientFunds indicates an account balance below the
	// required debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDuplicate indicates a unique-key conflict (SKU, username,
	// supplier name).
	ErrDuplicate = errors.New("duplicate entry")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates non-admin access to an admin operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
