package client

import (
	"context"
	"sync"
	"time"
)

// Feed is the polling source. *Client implements it; tests substitute fakes.
type Feed interface {
	Fetch(ctx context.Context, cursor int64, identity Identity) (*FeedPage, error)
}

const (
	defaultInterval = 3 * time.Second
	defaultAlertTTL = 8 * time.Second
	// Opening the notification list marks everything read after this delay
	// so the unread badge visibly counts down instead of vanishing.
	defaultReadDelay = time.Second
	maxNotifications = 50
)

// Options configures a Poller. Zero durations take the defaults above.
type Options struct {
	Identity  Identity
	Interval  time.Duration
	AlertTTL  time.Duration
	ReadDelay time.Duration

	// Audible marks the owning view as internal (reception, host portal,
	// admin); such views get an audible cue with each alert. Kiosk-facing
	// views leave it false.
	Audible bool

	// OnAlert is invoked once per poll batch with the promoted alert and the
	// audible capability at that moment. Optional.
	OnAlert func(n Notification, audible bool)
}

// Poller maintains a live view of the notification feed for one client
// session without a persistent connection. It ticks on a fixed interval,
// keeps at most one request in flight (ticks during a slow request are
// skipped, not queued), advances its cursor monotonically, and surfaces at
// most one transient alert at a time: when several events arrive in one
// batch, only the highest-id one is promoted, though all are recorded.
type Poller struct {
	feed      Feed
	identity  Identity
	interval  time.Duration
	alertTTL  time.Duration
	readDelay time.Duration
	onAlert   func(Notification, bool)

	mu            sync.Mutex
	cursor        int64
	notifications []Notification
	active        *Notification
	alertGen      int
	audible       bool
	inflight      bool
	closed        bool

	cancel       context.CancelFunc
	done         chan struct{}
	fetches      sync.WaitGroup
	dismissTimer *time.Timer
	readTimer    *time.Timer
}

// NewPoller creates a poller over the feed. Call Start to begin polling.
func NewPoller(feed Feed, opts Options) *Poller {
	p := &Poller{
		feed:      feed,
		identity:  opts.Identity,
		interval:  opts.Interval,
		alertTTL:  opts.AlertTTL,
		readDelay: opts.ReadDelay,
		audible:   opts.Audible,
		onAlert:   opts.OnAlert,
	}
	if p.interval <= 0 {
		p.interval = defaultInterval
	}
	if p.alertTTL <= 0 {
		p.alertTTL = defaultAlertTTL
	}
	if p.readDelay <= 0 {
		p.readDelay = defaultReadDelay
	}
	return p
}

// Start begins the polling loop. It returns immediately; polling continues
// until Stop is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.closed || p.cancel != nil {
		p.mu.Unlock()
		cancel()
		return
	}
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

// Stop cancels the polling loop and any pending auto-dismiss or delayed
// read-marking, and waits out any fetch still in flight. No state mutates
// and no alert callback fires after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel := p.cancel
	done := p.done
	if p.dismissTimer != nil {
		p.dismissTimer.Stop()
		p.dismissTimer = nil
	}
	if p.readTimer != nil {
		p.readTimer.Stop()
		p.readTimer = nil
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	p.fetches.Wait()
}

// tick issues one poll unless a previous one is still in flight.
func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	if p.inflight || p.closed {
		p.mu.Unlock()
		return
	}
	p.inflight = true
	cursor := p.cursor
	p.fetches.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.fetches.Done()
		page, err := p.feed.Fetch(ctx, cursor, p.identity)

		p.mu.Lock()
		p.inflight = false
		if p.closed || err != nil || page == nil || !page.HasNew || len(page.Notifications) == 0 {
			// Transient failures keep prior state and wait for the next tick.
			p.mu.Unlock()
			return
		}
		alert, audible := p.applyLocked(page)
		cb := p.onAlert
		p.mu.Unlock()

		if cb != nil {
			cb(alert, audible)
		}
	}()
}

// applyLocked merges a non-empty batch into local state. Caller holds mu.
func (p *Poller) applyLocked(page *FeedPage) (Notification, bool) {
	if page.LatestID > p.cursor {
		p.cursor = page.LatestID
	}

	// Incoming events are ascending; the list is kept most-recent-first.
	merged := make([]Notification, 0, len(page.Notifications)+len(p.notifications))
	for i := len(page.Notifications) - 1; i >= 0; i-- {
		n := page.Notifications[i]
		n.IsRead = false
		merged = append(merged, n)
	}
	merged = append(merged, p.notifications...)
	if len(merged) > maxNotifications {
		merged = merged[:maxNotifications]
	}
	p.notifications = merged

	// Only the newest event of the batch is announced.
	latest := page.Notifications[len(page.Notifications)-1]
	latest.IsRead = false
	p.active = &latest

	p.alertGen++
	gen := p.alertGen
	if p.dismissTimer != nil {
		p.dismissTimer.Stop()
	}
	p.dismissTimer = time.AfterFunc(p.alertTTL, func() {
		p.dismissExpired(gen)
	})

	return latest, p.audible
}

func (p *Poller) dismissExpired(gen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.alertGen {
		return
	}
	p.active = nil
}

// Dismiss clears the active alert ahead of its auto-dismiss.
func (p *Poller) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.active = nil
	if p.dismissTimer != nil {
		p.dismissTimer.Stop()
		p.dismissTimer = nil
	}
}

// MarkAllRead marks every held notification read. Idempotent, client-local.
func (p *Poller) MarkAllRead() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for i := range p.notifications {
		p.notifications[i].IsRead = true
	}
}

// Clear drops all held notifications. The cursor is untouched, so cleared
// events cannot reappear on later polls.
func (p *Poller) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.notifications = nil
}

// Open reports that the notification list was opened; everything is marked
// read after a short delay.
func (p *Poller) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.readTimer != nil {
		p.readTimer.Stop()
	}
	p.readTimer = time.AfterFunc(p.readDelay, p.MarkAllRead)
}

// SetAudible updates the audible capability as the owning view changes.
func (p *Poller) SetAudible(audible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audible = audible
}

// Cursor returns the highest event id observed so far.
func (p *Poller) Cursor() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Notifications returns a copy of the held list, most recent first.
func (p *Poller) Notifications() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}

// ActiveAlert returns the currently displayed alert, or nil.
func (p *Poller) ActiveAlert() *Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return nil
	}
	n := *p.active
	return &n
}

// UnreadCount returns how many held notifications are unread.
func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, n := range p.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}
