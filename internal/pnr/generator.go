package pnr

import (
	"strings"

	"github.com/google/uuid"
)

// Length of a booking reference.
const Length = 6

type Generator interface {
	Generate() string
}

// UUIDGenerator derives references from random UUIDs. Collisions are possible;
// the booking store's unique constraint is what guarantees uniqueness.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) Generate() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:Length])
}

// Valid reports whether s looks like a reference this package produces.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

var _ Generator = UUIDGenerator{}
