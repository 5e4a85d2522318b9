// Package billno issues bill numbers derived from the wall clock.
//
// A bill number is the prefix "BILL" followed by the issue time down to the
// second (BILL20250314193005). Numbers therefore sort by issue time. Two
// numbers issued within the same second are identical unless the generator
// runs in hardened mode, which appends a "-NNNN" sequence to the second and
// later numbers of that second. Hardened numbers keep issue order under a
// plain string sort for up to 10000 numbers per second.
package billno

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	Prefix = "BILL"
	Layout = "20060102150405"
)

// Generator is safe for concurrent use.
type Generator struct {
	now      func() time.Time
	hardened bool

	mu       sync.Mutex
	lastSec  string
	sequence int
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// Hardened appends a per-second sequence so numbers issued in the same second differ.
func Hardened(enabled bool) Option {
	return func(g *Generator) { g.hardened = enabled }
}

// New creates a generator.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a new bill number.
func (g *Generator) Next() string {
	stamp := g.now().Format(Layout)
	if !g.hardened {
		return Prefix + stamp
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if stamp != g.lastSec {
		g.lastSec = stamp
		g.sequence = 0
		return Prefix + stamp
	}
	g.sequence++
	return fmt.Sprintf("%s%s-%04d", Prefix, stamp, g.sequence)
}

// ParseIssuedAt recovers the second a bill number was issued in, in loc.
func ParseIssuedAt(billNumber string, loc *time.Location) (time.Time, error) {
	if !strings.HasPrefix(billNumber, Prefix) {
		return time.Time{}, errors.Newf("bill number %q lacks the %s prefix", billNumber, Prefix)
	}
	rest := strings.TrimPrefix(billNumber, Prefix)
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		rest = rest[:i]
	}
	t, err := time.ParseInLocation(Layout, rest, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid bill number %q", billNumber)
	}
	return t, nil
}
