// Package id provides centralized ID generation for the UI host.
//
// Every handle is a ULID with a type prefix:
//   - Lexicographic sortability: instances sort by open time
//   - Prefixed types: ui_*, req_*, sub_*, tmr_* are readable in logs
//   - Type safety: separate types prevent handing a request ID to the orchestrator
//
// Handles are compared by value. The orchestrator never keys membership on
// pointer identity.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// InstanceID identifies one live UI instance for its whole lifetime
type InstanceID string

// RequestID identifies an API request or trace span
type RequestID string

// SubscriberID identifies an event stream subscriber
type SubscriberID string

// TimerID identifies a scheduled frame task
type TimerID string

// ============================================================================
// ID Prefixes
// ============================================================================

const (
	InstancePrefix   = "ui"
	RequestPrefix    = "req"
	SubscriberPrefix = "sub"
	TimerPrefix      = "tmr"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewInstanceID generates a new UI instance handle
func NewInstanceID() InstanceID {
	return InstanceID(Default().GenerateWithPrefix(InstancePrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewSubscriberID generates a new subscriber ID
func NewSubscriberID() SubscriberID {
	return SubscriberID(Default().GenerateWithPrefix(SubscriberPrefix))
}

// NewTimerID generates a new timer ID
func NewTimerID() TimerID {
	return TimerID(Default().GenerateWithPrefix(TimerPrefix))
}

func (id InstanceID) String() string   { return string(id) }
func (id RequestID) String() string    { return string(id) }
func (id SubscriberID) String() string { return string(id) }
func (id TimerID) String() string      { return string(id) }

// IsZero reports whether the handle is unset
func (id InstanceID) IsZero() bool { return id == "" }

// ============================================================================
// Validation
// ============================================================================

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// ParseInstanceID validates a prefixed instance handle such as ui_01H...
func ParseInstanceID(s string) (InstanceID, error) {
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok || prefix != InstancePrefix {
		return "", fmt.Errorf("invalid instance id %q: want %s_<ulid>", s, InstancePrefix)
	}
	if !IsValid(raw) {
		return "", fmt.Errorf("invalid instance id %q: malformed ulid", s)
	}
	return InstanceID(s), nil
}

// Timestamp extracts the timestamp from a ULID, with or without a prefix
func Timestamp(id string) (time.Time, error) {
	if _, raw, ok := strings.Cut(id, "_"); ok {
		id = raw
	}
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
