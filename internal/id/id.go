// Package id generates run identifiers.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// New returns a 32-character hex id whose first 12 characters are the
// creation time in milliseconds, so ids sort by submission order.
func New() string {
	return newAt(time.Now())
}

func newAt(t time.Time) string {
	var b [16]byte
	var ms [8]byte
	binary.BigEndian.PutUint64(ms[:], uint64(t.UnixMilli()))
	copy(b[:6], ms[2:])
	if _, err := rand.Read(b[6:]); err != nil {
		binary.BigEndian.PutUint64(b[8:], uint64(t.UnixNano()))
	}
	return hex.EncodeToString(b[:])
}
