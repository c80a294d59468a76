package metrics

import "github.com/google/uuid"

// NewRunID generates a unique identifier for one historize invocation,
// grounded on the teacher's generateOpID idempotency-key pattern.
func NewRunID() string {
	return uuid.New().String()
}
