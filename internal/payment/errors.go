package payment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
	ErrMisconfiguredMethod = errors.New("payment method not configured")
)

// UnsupportedMethodError is returned by Factory.Get when no strategy
// is registered under the requested name. It lists the registered
// methods so the caller's error message is actionable.
type UnsupportedMethodError struct {
	Method    string
	Supported []string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported payment method %q (supported: %s)",
		e.Method, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedMethodError) Unwrap() error {
	return ErrUnsupportedMethod
}

// MisconfiguredMethodError is returned by Factory.Get when a strategy
// is registered but cannot operate: either its constructor failed or
// the constructed instance reports IsConfigured()=false.
type MisconfiguredMethodError struct {
	Method string
	Err    error
}

func (e *MisconfiguredMethodError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment method %q is not configured: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("payment method %q is not configured", e.Method)
}

func (e *MisconfiguredMethodError) Unwrap() error {
	return ErrMisconfiguredMethod
}
