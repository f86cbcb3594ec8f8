package resilience

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// MarshalText renders the state as its name in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Threshold is the number of consecutive failures that opens the breaker
	Threshold uint32
	// Cooldown is how long the breaker stays open before allowing probes
	Cooldown time.Duration
	// Probes is the number of attempts admitted while half-open
	Probes uint32
	// OnStateChange is called whenever the state changes, with the lock released
	OnStateChange func(name string, from State, to State)
}

func (s Settings) withDefaults() Settings {
	if s.Threshold == 0 {
		s.Threshold = 3
	}
	if s.Cooldown == 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.Probes == 0 {
		s.Probes = 1
	}
	return s
}

// Counts holds the statistics for a breaker
type Counts struct {
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
	TotalFailures       uint64 `json:"total_failures"`
	TotalSuccesses      uint64 `json:"total_successes"`
	Rejected            uint64 `json:"rejected"`
}

// Breaker tracks the health of one named operation.
//
// Attempts are admitted with Allow and their outcome reported with Success or
// Failure. The two halves may happen far apart: a script template is admitted
// when it is built and its hooks report outcomes for as long as it lives.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	probes   uint32
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	return &Breaker{
		name:     name,
		settings: settings.withDefaults(),
		now:      time.Now,
		state:    StateClosed,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, moving open to half-open once the cooldown elapsed
func (b *Breaker) State() State {
	b.mu.Lock()
	state, changed := b.current()
	b.mu.Unlock()
	b.notify(changed)
	return state
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Allow admits an attempt or reports why it is refused
func (b *Breaker) Allow() error {
	b.mu.Lock()
	state, changed := b.current()
	var err error
	switch state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.probes >= b.settings.Probes {
			err = ErrTooManyRequests
		} else {
			b.probes++
		}
	}
	if err != nil {
		b.counts.Rejected++
	}
	b.mu.Unlock()
	b.notify(changed)
	return err
}

// Success records a successful attempt
func (b *Breaker) Success() {
	b.mu.Lock()
	b.counts.TotalSuccesses++
	b.counts.ConsecutiveFailures = 0
	var changed *transition
	if b.state == StateHalfOpen {
		changed = b.setState(StateClosed)
	}
	b.mu.Unlock()
	b.notify(changed)
}

// Failure records a failed attempt
func (b *Breaker) Failure() {
	b.mu.Lock()
	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	var changed *transition
	switch b.state {
	case StateClosed:
		if b.counts.ConsecutiveFailures >= b.settings.Threshold {
			changed = b.setState(StateOpen)
		}
	case StateHalfOpen:
		changed = b.setState(StateOpen)
	}
	b.mu.Unlock()
	b.notify(changed)
}

// Execute runs fn if the breaker admits it and records the outcome
func (b *Breaker) Execute(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.Failure()
			panic(e)
		}
	}()

	if err := fn(); err != nil {
		b.Failure()
		return err
	}
	b.Success()
	return nil
}

// Reset closes the breaker and clears its failure streak
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.counts.ConsecutiveFailures = 0
	changed := b.setState(StateClosed)
	b.mu.Unlock()
	b.notify(changed)
}

type transition struct{ from, to State }

// current must be called with mu held
func (b *Breaker) current() (State, *transition) {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		return StateHalfOpen, b.setState(StateHalfOpen)
	}
	return b.state, nil
}

// setState must be called with mu held
func (b *Breaker) setState(state State) *transition {
	if b.state == state {
		return nil
	}
	prev := b.state
	b.state = state
	b.probes = 0
	if state == StateOpen {
		b.openedAt = b.now()
	}
	return &transition{from: prev, to: state}
}

func (b *Breaker) notify(t *transition) {
	if t != nil && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, t.from, t.to)
	}
}

// Status is the reportable view of one breaker
type Status struct {
	Name   string `json:"name"`
	State  State  `json:"state"`
	Counts Counts `json:"counts"`
}

// Group lazily creates one breaker per name with shared settings
type Group struct {
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty group
func NewGroup(settings Settings) *Group {
	return &Group{
		settings: settings,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it closed on first use
func (g *Group) Get(name string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.breakers[name]
	if !ok {
		b = New(name, g.settings)
		g.breakers[name] = b
	}
	return b
}

// Reset closes the breaker for name if one exists
func (g *Group) Reset(name string) {
	g.mu.Lock()
	b, ok := g.breakers[name]
	g.mu.Unlock()
	if ok {
		b.Reset()
	}
}

// Tripped lists every breaker that is not closed, sorted by name
func (g *Group) Tripped() []Status {
	g.mu.Lock()
	all := make([]*Breaker, 0, len(g.breakers))
	for _, b := range g.breakers {
		all = append(all, b)
	}
	g.mu.Unlock()

	var out []Status
	for _, b := range all {
		if state := b.State(); state != StateClosed {
			out = append(out, Status{Name: b.Name(), State: state, Counts: b.Counts()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
