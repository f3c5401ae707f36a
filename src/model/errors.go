package model

import "fmt"

// Error taxonomy for the request-to-order pipeline. Each category maps to a
// fixed HTTP class in the webhook handler and to a fixed retry decision in
// the venue client:
//
//	ValidationError     -> 400, never retried
//	ResolutionError     -> 400 (CatalogUnavailable -> 500), never retried
//	StateReadError      -> 500, caller may retry the whole signal
//	SizingError         -> 400, never retried
//	OrderRejectedError  -> venue evaluated and refused; terminal
//	TransportError      -> retried up to the attempt budget, then 500

// ValidationError marks malformed or missing inbound input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ResolutionKind narrows why a symbol could not be resolved.
type ResolutionKind string

const (
	ResolutionSymbolFormat       ResolutionKind = "symbol_format"
	ResolutionNotFound           ResolutionKind = "not_found"
	ResolutionCatalogUnavailable ResolutionKind = "catalog_unavailable"
)

// ResolutionError marks a symbol that did not map to a tradable instrument.
type ResolutionError struct {
	Kind   ResolutionKind
	Symbol string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q (%s): %s", e.Symbol, e.Kind, e.Reason)
}

// StateReadError marks a failed read of account or catalog state.
type StateReadError struct {
	What string
	Err  error
}

func (e *StateReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.What, e.Err)
}

func (e *StateReadError) Unwrap() error { return e.Err }

// SizingError marks a computed quantity that cannot be submitted.
type SizingError struct {
	Reason string
}

func (e *SizingError) Error() string {
	return "sizing failed: " + e.Reason
}

// OrderRejectedError marks an order the venue received, evaluated and
// logically refused. Never retried internally.
type OrderRejectedError struct {
	Code    int
	Message string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected by venue (code=%d): %s", e.Code, e.Message)
}

// LeverageError marks a failed leverage/margin-mode change. The orchestrator
// treats it as best-effort and proceeds.
type LeverageError struct {
	Symbol string
	Err    error
}

func (e *LeverageError) Error() string {
	return fmt.Sprintf("failed to set leverage on %s: %v", e.Symbol, e.Err)
}

func (e *LeverageError) Unwrap() error { return e.Err }

// TransportError marks a timeout or transport-level failure that survived
// the full retry budget.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
