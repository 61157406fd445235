package gpio

import (
	"context"
	"fmt"
	"time"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

/* Lines is the periph.io implementation of Reader and Watcher
 * Pins are addressed by their BCM numbers and configured as pull-down
 * inputs with both-edge detection, matching the contact wiring the
 * zone polarity defaults assume
 */
type Lines struct {
	pins map[int]pgpio.PinIO
}

// Open initialises the periph host and claims the given BCM lines as
// pull-down inputs with edge detection enabled.
func Open(pins []int) (*Lines, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising periph host: %w", err)
	}
	l := &Lines{pins: make(map[int]pgpio.PinIO, len(pins))}
	for _, pin := range pins {
		p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
		if p == nil {
			return nil, fmt.Errorf("no such GPIO line: GPIO%d", pin)
		}
		if err := p.In(pgpio.PullDown, pgpio.BothEdges); err != nil {
			return nil, fmt.Errorf("configuring GPIO%d as input: %w", pin, err)
		}
		l.pins[pin] = p
	}
	return l, nil
}

// Read returns true when the line is at logic high.
func (l *Lines) Read(pin int) (bool, error) {
	p, ok := l.pins[pin]
	if !ok {
		return false, fmt.Errorf("GPIO%d was not opened", pin)
	}
	return p.Read() == pgpio.High, nil
}

// Watch spawns a goroutine delivering edge notifications for the line
// until the context is cancelled. The wait is bounded so cancellation
// is observed within a second.
func (l *Lines) Watch(ctx context.Context, pin int, fn func(pin int)) error {
	p, ok := l.pins[pin]
	if !ok {
		return fmt.Errorf("GPIO%d was not opened", pin)
	}
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			if p.WaitForEdge(time.Second) {
				fn(pin)
			}
		}
	}()
	return nil
}

// Close releases every claimed line.
func (l *Lines) Close() error {
	var firstErr error
	for pin, p := range l.pins {
		if err := p.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("halting GPIO%d: %w", pin, err)
		}
	}
	return firstErr
}
