package utils

import (
	"crypto/rand"
	"time"
)

// NewNumericID returns a new opaque int64 identifier for ledger entities.
// IDs are time-ordered (microsecond resolution) with a random low byte so
// that entities created on different devices in the same microsecond still
// collide only with negligible probability; collisions surface as
// apperrors.ErrDuplicate at insert time.
func NewNumericID() int64 {
	var b [1]byte
	_, _ = rand.Read(b[:])
	return time.Now().UnixMicro()<<8 | int64(b[0])
}
