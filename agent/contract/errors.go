package contract

import "errors"

var (
	// Request-level failures surfaced directly to the transport layer.
	ErrInvalidCustomer = errors.New("invalid customer id")
	ErrUnknownSession  = errors.New("unknown session id")

	// Turn-level failures. The session survives; the triggering turn
	// produces no reply.
	ErrToolLoopExceeded = errors.New("tool loop iteration cap exceeded")
	ErrAgentTimeout     = errors.New("agent turn deadline exceeded")

	// Directory lookups for identifiers that are not on file.
	ErrCustomerNotFound = errors.New("customer not found")

	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
)
