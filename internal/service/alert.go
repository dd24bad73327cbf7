package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/skyweb/vms/internal/domain"
)

// CheckInAlert carries everything a notifier needs to announce a new
// check-in. Host is nil when the named host has no directory entry.
type CheckInAlert struct {
	Visitor domain.Visitor
	Host    *domain.User
}

// Notifier delivers a check-in alert to one outbound channel.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string
	Notify(ctx context.Context, alert CheckInAlert) error
}

// AlertDispatcher fans a check-in alert out to all configured notifiers.
// Delivery is best effort: failures are logged and never reach the kiosk.
type AlertDispatcher struct {
	notifiers []Notifier
}

// NewAlertDispatcher creates a dispatcher over the given notifiers.
func NewAlertDispatcher(notifiers ...Notifier) *AlertDispatcher {
	return &AlertDispatcher{notifiers: notifiers}
}

// Dispatch delivers the alert on every channel and waits for all of them or
// for ctx to expire.
func (d *AlertDispatcher) Dispatch(ctx context.Context, alert CheckInAlert) {
	var wg sync.WaitGroup
	for _, n := range d.notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			if err := n.Notify(ctx, alert); err != nil {
				slog.Error("check-in alert failed",
					"channel", n.Name(),
					"visitor", alert.Visitor.ID,
					"host", alert.Visitor.HostName,
					"error", err,
				)
				return
			}
			slog.Info("check-in alert sent", "channel", n.Name(), "visitor", alert.Visitor.ID)
		}(n)
	}
	wg.Wait()
}
