package contracts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NeurArk/ai-contract-guardian/client"
	"github.com/NeurArk/ai-contract-guardian/model"
	"github.com/NeurArk/ai-contract-guardian/pkg/logger"
)

// PollState is the explicit state of the polling machine, instead of
// re-deriving it from the last seen status at every tick.
type PollState int

const (
	// PollIdle means no watch has started.
	PollIdle PollState = iota
	// Polling means status requests are being issued on the interval.
	Polling
	// PollStopped means a terminal status was seen or the watch was
	// cancelled; no further requests will be issued.
	PollStopped
)

// ErrWatchActive is returned when a watch is started while another is
// still running on the same poller.
var ErrWatchActive = errors.New("a status watch is already running")

// statusFetcher is the slice of the data layer the poller needs.
type statusFetcher interface {
	Status(ctx context.Context, id string) (*model.AnalysisStatus, error)
}

// Poller keeps an in-flight analysis status fresh. It fetches
// immediately, then on a fixed interval, and stops as soon as a
// terminal status (completed or failed) is observed so no wasted
// requests follow. Transient fetch errors are skipped; the poll
// resumes at the next tick.
type Poller struct {
	svc      statusFetcher
	interval time.Duration

	mu    sync.Mutex
	state PollState
}

// NewPoller creates a poller fetching on the given interval.
func NewPoller(svc statusFetcher, interval time.Duration) *Poller {
	return &Poller{
		svc:      svc,
		interval: interval,
		state:    PollIdle,
	}
}

// State returns the current polling state.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Watch starts polling the status of one contract. Updates are
// delivered on the returned channel; the channel is closed after a
// terminal status has been delivered or the context is cancelled.
// Cancelling the context stops the ticker, so a view navigating away
// leaves no dangling timers.
func (p *Poller) Watch(ctx context.Context, contractID string) (<-chan model.AnalysisStatus, error) {
	p.mu.Lock()
	if p.state == Polling {
		p.mu.Unlock()
		return nil, ErrWatchActive
	}
	p.state = Polling
	p.mu.Unlock()

	updates := make(chan model.AnalysisStatus, 1)
	go p.run(ctx, contractID, updates)
	return updates, nil
}

func (p *Poller) run(ctx context.Context, contractID string, updates chan<- model.AnalysisStatus) {
	defer close(updates)
	defer p.setState(PollStopped)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First fetch happens immediately; the interval only paces the
	// follow-ups.
	if done := p.poll(ctx, contractID, updates); done {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := p.poll(ctx, contractID, updates); done {
				return
			}
		}
	}
}

// poll performs one status fetch. It reports true when polling must
// stop: terminal status delivered, context cancelled, or the contract
// is gone.
func (p *Poller) poll(ctx context.Context, contractID string, updates chan<- model.AnalysisStatus) bool {
	status, err := p.svc.Status(ctx, contractID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		if errors.Is(err, client.ErrNotFound) || errors.Is(err, client.ErrUnauthorized) {
			logger.Warn(ctx, "stopping status watch", "contract_id", contractID, "error", err)
			return true
		}
		// Transient failure: skip this tick, keep polling.
		logger.Debug(ctx, "status poll failed, will retry at next tick", "contract_id", contractID, "error", err)
		return false
	}

	select {
	case updates <- *status:
	case <-ctx.Done():
		return true
	}

	return status.Status.Terminal()
}

func (p *Poller) setState(state PollState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}
