// Package id provides identifier generation for ProxyScope services.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates Universally Unique Lexicographically Sortable
// Identifiers. It uses a monotonic entropy source, so IDs created within
// the same millisecond still sort in creation order.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGenerator creates a ULID generator seeded from crypto/rand.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate creates a new ULID string (26 characters, Crockford Base32).
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// GenerateN creates n ULIDs in one call.
func (g *ULIDGenerator) GenerateN(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = g.Generate()
	}
	return ids
}

var defaultGenerator = NewULIDGenerator()

// NewULID generates a ULID using the package-level generator.
func NewULID() string {
	return defaultGenerator.Generate()
}

// IsValid reports whether id is a well-formed ULID.
func IsValid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// Timestamp extracts the embedded creation time of a ULID.
func Timestamp(id string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
