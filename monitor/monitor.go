// Package monitor owns the zone state machine: it maps input
// transitions to logical zone states, pushes them to the bridge and
// runs the security escalation procedure when a security zone opens.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"alarmd/gpio"
	"alarmd/metrics"
	"alarmd/webhook"
	"alarmd/zones"
)

// EventKind discriminates the two triggers feeding the update loop.
type EventKind int

const (
	// EdgeEvent is an asynchronous hardware transition on one line.
	EdgeEvent EventKind = iota + 1
	// HeartbeatTick is the periodic full pass over all zones.
	HeartbeatTick
)

// Event is one unit of work for the update loop.
type Event struct {
	Kind EventKind
	Pin  int // set for EdgeEvent only
}

// Config carries the loop timings.
type Config struct {
	// Heartbeat is the idle time between full passes.
	Heartbeat time.Duration
	// Spacing is the pause between zones within one pass, on top of
	// the client's own throttle.
	Spacing time.Duration
}

/* Monitor drives every zone through a single consumer loop
 * Edge callbacks enqueue events; the loop drains them in arrival
 * order and interleaves periodic heartbeat passes, so updates are
 * serialized without any lock of their own
 */
type Monitor struct {
	zones  []zones.Zone
	byPin  map[int]*zones.Zone
	client webhook.Sender
	pins   gpio.Reader
	cfg    Config
	logger *slog.Logger
	events chan Event
}

// New creates a monitor owning the given zones. The zone slice order
// is the pass order.
func New(zs []zones.Zone, client webhook.Sender, pins gpio.Reader, cfg Config, logger *slog.Logger) *Monitor {
	m := &Monitor{
		zones:  zs,
		byPin:  make(map[int]*zones.Zone, len(zs)),
		client: client,
		pins:   pins,
		cfg:    cfg,
		logger: logger,
		events: make(chan Event, 64),
	}
	for i := range m.zones {
		m.byPin[m.zones[i].Pin] = &m.zones[i]
	}
	return m
}

// NotifyEdge enqueues an edge event for the given line. Safe to call
// from the hardware watcher goroutines. A full queue drops the event;
// the next heartbeat pass re-reads the line anyway.
func (m *Monitor) NotifyEdge(pin int) {
	select {
	case m.events <- Event{Kind: EdgeEvent, Pin: pin}:
	default:
		m.logger.Warn("event queue full, dropping edge", "pin", pin)
	}
}

// Run drives the update loop until the context is cancelled. The
// first heartbeat pass fires immediately so the bridge learns every
// zone's state at startup.
func (m *Monitor) Run(ctx context.Context) error {
	heartbeat := time.NewTimer(0)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-m.events:
			m.handle(ctx, ev)
		case <-heartbeat.C:
			m.handle(ctx, Event{Kind: HeartbeatTick})
			heartbeat.Reset(m.cfg.Heartbeat)
		}
	}
}

func (m *Monitor) handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EdgeEvent:
		z, ok := m.byPin[ev.Pin]
		if !ok {
			m.logger.Warn("edge on unconfigured line", "pin", ev.Pin)
			return
		}
		m.Update(z)
	case HeartbeatTick:
		for i := range m.zones {
			if ctx.Err() != nil {
				return
			}
			m.Update(&m.zones[i])
			sleep(ctx, m.cfg.Spacing)
		}
	}
}

// Update reads the zone's current level, pushes the logical state to
// the bridge and, for an inactive security zone, runs the escalation
// procedure. A failed push short-circuits: a zone whose state could
// not be reported must not raise a security event.
func (m *Monitor) Update(z *zones.Zone) {
	level, err := m.pins.Read(z.Pin)
	if err != nil {
		m.logger.Error("reading zone input", "zone", z.Name, "pin", z.Pin, "error", err)
		return
	}
	active := level != z.ActiveLow

	state := "false"
	if active {
		state = "true"
	}
	_, err = m.client.Send(webhook.Params{
		{Key: "accessoryId", Value: z.AccessoryID},
		{Key: "state", Value: state},
	})
	if err != nil {
		m.logger.Error("zone state push failed", "zone", z.Name, "accessory", z.AccessoryID, "error", err)
		return
	}
	metrics.SetZoneActive(z.AccessoryID, active)
	m.logger.Info("zone state pushed",
		"zone", z.Name,
		"accessory", z.AccessoryID,
		"contact", contactLabel(active),
	)

	if !active && z.Security() {
		m.Escalate(z)
	}
}

func contactLabel(active bool) string {
	if active {
		return "closed (contact)"
	}
	return "open (no contact)"
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
