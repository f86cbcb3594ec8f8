package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/infrastructure/resilience"
)

// DefaultPollInterval is how often a remote catalog is fetched again
const DefaultPollInterval = time.Minute

// Poller re-seeds the registry from a remote catalog on an interval.
// A breaker, when set, stops polling a catalog server that keeps failing.
type Poller struct {
	seeder   *Seeder
	url      string
	interval time.Duration
	logger   *zap.Logger
	breaker  *resilience.Breaker
	onReload func(SeedResult, error)
}

// NewPoller creates a poller for the catalog at url
func NewPoller(seeder *Seeder, url string, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		seeder:   seeder,
		url:      url,
		interval: DefaultPollInterval,
		logger:   logger,
	}
}

// WithInterval sets the time between fetches
func (p *Poller) WithInterval(d time.Duration) *Poller {
	if d > 0 {
		p.interval = d
	}
	return p
}

// WithBreaker guards fetches with b
func (p *Poller) WithBreaker(b *resilience.Breaker) *Poller {
	p.breaker = b
	return p
}

// OnReload registers a callback invoked after every attempted fetch
func (p *Poller) OnReload(fn func(SeedResult, error)) *Poller {
	p.onReload = fn
	return p
}

// Run polls until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Polling catalog", zap.String("url", p.url), zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	var res SeedResult
	seed := func() error {
		var err error
		res, err = p.seeder.Seed(ctx, p.url)
		return err
	}

	var err error
	if p.breaker != nil {
		err = p.breaker.Execute(seed)
	} else {
		err = seed()
	}

	switch {
	case err == resilience.ErrCircuitOpen || err == resilience.ErrTooManyRequests:
		p.logger.Debug("Catalog poll skipped", zap.String("url", p.url), zap.Error(err))
		return
	case err != nil:
		p.logger.Warn("Catalog poll failed", zap.String("url", p.url), zap.Error(err))
	}

	if p.onReload != nil {
		p.onReload(res, err)
	}
}
