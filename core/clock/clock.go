// Package clock abstracts time and id generation so runs are deterministic in tests.
package clock

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval.
type Clock interface {
	Now() time.Time
}

// Real returns the actual current time in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// IDGenerator abstracts unique id generation.
type IDGenerator interface {
	New() string
}

// UUID produces random UUIDs.
type UUID struct{}

func (UUID) New() string { return uuid.NewString() }
