// Package gpio wraps periph.io access to the board's input lines.
// The rest of the daemon depends only on the Reader and Watcher
// interfaces, so it can run and be tested without Pi hardware.
package gpio

import "context"

// Reader reads the current logic level of a BCM-numbered input line.
type Reader interface {
	Read(pin int) (bool, error)
}

// Watcher registers a callback invoked on every rising or falling
// transition of a BCM-numbered input line.
type Watcher interface {
	Watch(ctx context.Context, pin int, fn func(pin int)) error
}
