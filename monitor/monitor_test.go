package monitor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarmd/monitor"
	"alarmd/webhook"
	"alarmd/zones"
)

// fakeSender records every bridge call and answers from a script.
type fakeSender struct {
	mu      sync.Mutex
	calls   []webhook.Params
	respond func(params webhook.Params) (map[string]any, error)
}

func (f *fakeSender) Send(params webhook.Params) (map[string]any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(params)
	}
	return map[string]any{"success": true}, nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSender) call(i int) webhook.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// fakeReader serves pin levels from a map.
type fakeReader struct {
	levels map[int]bool
	err    error
}

func (f *fakeReader) Read(pin int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.levels[pin], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMonitor(zs []zones.Zone, sender *fakeSender, reader *fakeReader) *monitor.Monitor {
	return monitor.New(zs, sender, reader, monitor.Config{
		Heartbeat: time.Hour,
		Spacing:   0,
	}, discardLogger())
}

func TestMonitor_Update(t *testing.T) {
	t.Run("pushes true for an active zone", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: true}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		require.Equal(t, 1, sender.callCount())
		assert.Equal(t, webhook.Params{
			{Key: "accessoryId", Value: "front-door"},
			{Key: "state", Value: "true"},
		}, sender.call(0))
	})

	t.Run("pushes false for an inactive zone", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: false}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		require.Equal(t, 1, sender.callCount())
		assert.Equal(t, webhook.Params{
			{Key: "accessoryId", Value: "front-door"},
			{Key: "state", Value: "false"},
		}, sender.call(0))
	})

	t.Run("active_low inverts the level mapping", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: false}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door", ActiveLow: true}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		require.Equal(t, 1, sender.callCount())
		assert.Equal(t, webhook.Param{Key: "state", Value: "true"}, sender.call(0)[1])
	})

	t.Run("inactive security zone triggers an escalation query", func(t *testing.T) {
		sender := &fakeSender{
			respond: func(params webhook.Params) (map[string]any, error) {
				return map[string]any{"currentState": float64(3), "success": true}, nil
			},
		}
		reader := &fakeReader{levels: map[int]bool{17: false}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door", SecurityAccessoryID: "alarm-panel"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		// State push, then mode query; mode off means no trigger call.
		require.Equal(t, 2, sender.callCount())
		assert.Equal(t, webhook.Params{
			{Key: "accessoryId", Value: "alarm-panel"},
		}, sender.call(1))
	})

	t.Run("active security zone never escalates", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: true}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door", SecurityAccessoryID: "alarm-panel"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		assert.Equal(t, 1, sender.callCount())
	})

	t.Run("inactive non-security zone never escalates", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: false}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		assert.Equal(t, 1, sender.callCount())
	})

	t.Run("failed state push short-circuits before any escalation", func(t *testing.T) {
		sender := &fakeSender{
			respond: func(params webhook.Params) (map[string]any, error) {
				return nil, &webhook.TransportError{URL: "http://bridge/", Err: errors.New("connection refused")}
			},
		}
		reader := &fakeReader{levels: map[int]bool{17: false}}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door", SecurityAccessoryID: "alarm-panel"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		// Only the failed push: no query, no trigger.
		assert.Equal(t, 1, sender.callCount())
	})

	t.Run("read failure sends nothing", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{err: errors.New("line not ready")}
		z := zones.Zone{Name: "Front Door", Pin: 17, AccessoryID: "front-door"}
		m := newMonitor([]zones.Zone{z}, sender, reader)

		m.Update(&z)

		assert.Equal(t, 0, sender.callCount())
	})
}

func TestMonitor_Run(t *testing.T) {
	t.Run("startup heartbeat updates every zone in order", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: true, 27: true}}
		zs := []zones.Zone{
			{Name: "Front Door", Pin: 17, AccessoryID: "front-door"},
			{Name: "Garage", Pin: 27, AccessoryID: "garage-door"},
		}
		m := newMonitor(zs, sender, reader)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			return sender.callCount() >= 2
		}, time.Second, 5*time.Millisecond)
		cancel()
		<-done

		assert.Equal(t, webhook.Param{Key: "accessoryId", Value: "front-door"}, sender.call(0)[0])
		assert.Equal(t, webhook.Param{Key: "accessoryId", Value: "garage-door"}, sender.call(1)[0])
	})

	t.Run("edge events update the matching zone", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: true, 27: true}}
		zs := []zones.Zone{
			{Name: "Front Door", Pin: 17, AccessoryID: "front-door"},
			{Name: "Garage", Pin: 27, AccessoryID: "garage-door"},
		}
		m := newMonitor(zs, sender, reader)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Run(ctx)
		}()

		// Wait out the startup pass first.
		require.Eventually(t, func() bool {
			return sender.callCount() >= 2
		}, time.Second, 5*time.Millisecond)

		m.NotifyEdge(27)
		require.Eventually(t, func() bool {
			return sender.callCount() >= 3
		}, time.Second, 5*time.Millisecond)
		cancel()
		<-done

		assert.Equal(t, webhook.Param{Key: "accessoryId", Value: "garage-door"}, sender.call(2)[0])
	})

	t.Run("edges on unconfigured lines are ignored", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: true}}
		zs := []zones.Zone{
			{Name: "Front Door", Pin: 17, AccessoryID: "front-door"},
		}
		m := newMonitor(zs, sender, reader)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			return sender.callCount() >= 1
		}, time.Second, 5*time.Millisecond)

		m.NotifyEdge(5)
		m.NotifyEdge(17)
		require.Eventually(t, func() bool {
			return sender.callCount() >= 2
		}, time.Second, 5*time.Millisecond)
		cancel()
		<-done

		// The unconfigured pin produced no call.
		assert.Equal(t, 2, sender.callCount())
		assert.Equal(t, webhook.Param{Key: "accessoryId", Value: "front-door"}, sender.call(1)[0])
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		sender := &fakeSender{}
		reader := &fakeReader{levels: map[int]bool{17: true}}
		zs := []zones.Zone{{Name: "Front Door", Pin: 17, AccessoryID: "front-door"}}
		m := newMonitor(zs, sender, reader)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- m.Run(ctx) }()
		cancel()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("Run did not stop after cancellation")
		}
	})
}
