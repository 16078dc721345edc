// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package core

import (
	"errors"
	"fmt"
)

// ConfigError signals a fatal, non-retryable misconfiguration: a missing RPC
// URL, an unparseable pubkey, a malformed alias file. The run must not start.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func NewConfigError(reason string, err error) *ConfigError {
	return &ConfigError{Reason: reason, Err: err}
}

// TransportError wraps RPC/network failures. Retryable errors are backed off
// and retried by the caller; Fatal errors abort the batch immediately.
type TransportError struct {
	Fatal bool
	Err   error
}

func (e *TransportError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("transport error (fatal): %s", e.Err)
	}
	return fmt.Sprintf("transport error (retryable): %s", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func NewRetryableTransportError(err error) *TransportError {
	return &TransportError{Fatal: false, Err: err}
}

func NewFatalTransportError(err error) *TransportError {
	return &TransportError{Fatal: true, Err: err}
}

// IsRetryable reports whether err is a TransportError marked retryable.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return !te.Fatal
	}
	return false
}

// DecodeError records a single account's parse failure. It never propagates
// to the run: callers must convert it into a FilterRecord with reason
// "parse_error" and continue scoring the remaining accounts.
type DecodeError struct {
	Account string
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error on %s: %s: %s", e.Account, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode error on %s: %s", e.Account, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func NewDecodeError(account, reason string, err error) *DecodeError {
	return &DecodeError{Account: account, Reason: reason, Err: err}
}

// InvariantViolation indicates registrar parameters out of range, or a
// computed multiplier outside [baseline, baseline+max_extra] after rounding
// tolerance. It is fatal: it signals a code or configuration bug, never a bad
// wallet, and must halt the batch rather than emit a silently wrong total.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s: %s", e.Invariant, e.Detail)
}

func NewInvariantViolation(invariant, detail string) *InvariantViolation {
	return &InvariantViolation{Invariant: invariant, Detail: detail}
}

// VerificationMismatch is returned only by the verify subcommand when a
// computed PowerResult diverges from the expected fixture beyond tolerance.
type VerificationMismatch struct {
	Wallet       string
	Field        string
	Got          float64
	Want         float64
	ToleranceAbs float64
}

func (e *VerificationMismatch) Error() string {
	return fmt.Sprintf("verification mismatch for %s.%s: got %v, want %v (tolerance %v)",
		e.Wallet, e.Field, e.Got, e.Want, e.ToleranceAbs)
}
