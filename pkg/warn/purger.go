package warn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
)

// DefaultPurgeInterval is how often a Purger sweeps expired warns.
const DefaultPurgeInterval = 10 * time.Minute

// Purger periodically deletes expired warns for all subjects. Counting never
// depends on it; it only keeps the store small.
type Purger struct {
	engine   *Engine
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewPurger(engine *Engine, interval time.Duration) *Purger {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	return &Purger{
		engine:   engine,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// RunOnce performs a single sweep.
func (p *Purger) RunOnce(ctx context.Context) (int, error) {
	n, err := p.engine.PurgeExpired(ctx, p.now())
	if err != nil {
		logger.Error("Error purgando advertencias expiradas: "+err.Error(), "WarnPurger")
		return 0, err
	}
	if n > 0 {
		logger.Info(fmt.Sprintf("%d advertencias expiradas eliminadas", n), "WarnPurger")
	} else {
		logger.Debug("Sin advertencias expiradas que eliminar", "WarnPurger")
	}
	return n, nil
}

// Start sweeps once and then every interval until Stop is called.
func (p *Purger) Start() {
	p.ticker = time.NewTicker(p.interval)

	go func() {
		defer close(p.stopped)
		p.RunOnce(context.Background())
		for {
			select {
			case <-p.done:
				return
			case <-p.ticker.C:
				p.RunOnce(context.Background())
			}
		}
	}()

	logger.System(fmt.Sprintf("Purga automática de advertencias iniciada (cada %s)", p.interval), "WarnPurger")
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (p *Purger) Stop() {
	p.stopOnce.Do(func() {
		if p.ticker == nil {
			close(p.stopped)
			return
		}
		p.ticker.Stop()
		close(p.done)
	})
	<-p.stopped
}
