package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FetchFunc performs one poll cycle. The context is cancelled when the
// poller stops, so an in-flight fetch never outlives its owner.
type FetchFunc func(ctx context.Context) error

// Poller runs a fetch on a fixed interval between Start and Stop. Start
// and Stop are tied to the owning component's lifetime; there is no
// free-running timer.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc
	logger   zerolog.Logger

	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
	done     chan struct{}
	cancel   context.CancelFunc
}

func New(name string, interval time.Duration, fetch FetchFunc, logger zerolog.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins polling until Stop is called or the context is
// cancelled. The first fetch runs immediately to warm the snapshot.
// Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.startMu.Unlock()

	go func() {
		p.logger.Info().Str("poller", p.name).Dur("interval", p.interval).Msg("poller started")
		p.fetchOnce(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info().Str("poller", p.name).Msg("poller stopped")
				return
			case <-p.done:
				p.logger.Info().Str("poller", p.name).Msg("poller stopped")
				return
			case <-ticker.C:
				p.fetchOnce(ctx)
			}
		}
	}()
}

// Stop halts polling and cancels any in-flight fetch. Safe to call more
// than once and before Start.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.startMu.Lock()
		if p.cancel != nil {
			p.cancel()
		}
		p.startMu.Unlock()
	})
}

func (p *Poller) fetchOnce(ctx context.Context) {
	start := time.Now()
	if err := p.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn().Err(err).Str("poller", p.name).Msg("poll cycle failed")
		return
	}
	p.logger.Debug().
		Str("poller", p.name).
		Dur("duration", time.Since(start)).
		Msg("poll cycle completed")
}
