package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mmcdole/twitchpanel/internal/domain"
)

// DefaultPollInterval is the delay between the end of one fetch and the start of the next
const DefaultPollInterval = 30 * time.Second

// directoryFetcher abstracts the followed-streams API (consumer-defined interface)
type directoryFetcher interface {
	FetchFollowedStreams(ctx context.Context) (domain.DirectorySnapshot, error)
}

// reconciler receives every successful snapshot
type reconciler interface {
	ApplySnapshot(snapshot domain.DirectorySnapshot, first bool)
}

// pollObserver records poll outcomes (metrics)
type pollObserver interface {
	ObservePoll(err error, duration time.Duration, live int)
}

// PollResult describes one settled fetch
type PollResult struct {
	Snapshot domain.DirectorySnapshot // zero on failure
	First    bool                     // true for the result that initialized the session
	Err      error
	Duration time.Duration
	At       time.Time
}

// OK reports whether the fetch succeeded
func (r PollResult) OK() bool {
	return r.Err == nil
}

// AuthRequired reports whether the fetch failed for lack of a valid token
func (r PollResult) AuthRequired() bool {
	return domain.IsAuthError(r.Err)
}

// Poller fetches the directory on a fixed delay and hands each snapshot to the
// session. A failed fetch leaves the session untouched; the loop continues
// until its context is cancelled.
type Poller struct {
	fetcher    directoryFetcher
	reconciler reconciler
	observer   pollObserver
	interval   time.Duration
	logger     *slog.Logger

	after func(time.Duration) <-chan time.Time
	now   func() time.Time

	started atomic.Bool
	refresh chan struct{}
	results chan PollResult
}

// NewPoller creates a poller. Call Start to begin polling.
func NewPoller(fetcher directoryFetcher, reconciler reconciler, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:    fetcher,
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
		after:      time.After,
		now:        time.Now,
		refresh:    make(chan struct{}, 1),
		results:    make(chan PollResult, 1),
	}
}

// SetObserver attaches an observer notified after every fetch
func (p *Poller) SetObserver(o pollObserver) {
	p.observer = o
}

// Interval returns the configured delay between fetches
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Results delivers the latest settled poll. Only the newest unread result is
// kept; the poller never blocks on a slow reader.
func (p *Poller) Results() <-chan PollResult {
	return p.results
}

// Start launches the polling loop. It returns false without starting a second
// loop if this poller is already running.
func (p *Poller) Start(ctx context.Context) bool {
	if !p.started.CompareAndSwap(false, true) {
		p.logger.Debug("poller already started")
		return false
	}
	go p.run(ctx)
	return true
}

// Refresh asks the running loop to fetch now instead of waiting for the timer
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	p.logger.Info("poller started", "interval", p.interval)
	first := true
	for {
		if res := p.poll(ctx, first); res.OK() {
			first = false
		}

		// The timer is armed only after the fetch settles
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-p.after(p.interval):
		case <-p.refresh:
		}
	}
}

// poll runs one fetch and applies it on success
func (p *Poller) poll(ctx context.Context, first bool) PollResult {
	start := p.now()
	snapshot, err := p.fetcher.FetchFollowedStreams(ctx)
	res := PollResult{
		First:    first,
		Err:      err,
		Duration: p.now().Sub(start),
		At:       p.now(),
	}

	if err != nil {
		res.First = false
		if errors.Is(err, context.Canceled) {
			p.logger.Debug("poll cancelled")
		} else {
			p.logger.Error("failed to fetch followed streams", "error", err, "duration", res.Duration)
		}
	} else {
		if snapshot.FetchedAt.IsZero() {
			snapshot.FetchedAt = res.At
		}
		res.Snapshot = snapshot
		p.reconciler.ApplySnapshot(snapshot, first)
		p.logger.Debug("polled followed streams", "live", snapshot.Len(), "first", first, "duration", res.Duration)
	}

	if p.observer != nil {
		p.observer.ObservePoll(err, res.Duration, res.Snapshot.Len())
	}
	p.publish(res)
	return res
}

// publish replaces any unread result with res
func (p *Poller) publish(res PollResult) {
	for {
		select {
		case p.results <- res:
			return
		default:
		}
		select {
		case <-p.results:
		default:
		}
	}
}
