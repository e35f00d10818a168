// Package wire emits the self-clocked one-wire signal understood by WS2812
// class LEDs.
//
// Every backend takes the bytes exactly as they must appear on the line: one
// green, red, blue triple per LED in chain order. Nothing here knows about
// panel geometry or brightness.
package wire

// Driver abstracts an LED output line.
type Driver interface {
	// Transmit sends data MSB first, then latches the chain. A nil or empty
	// slice is a no-op.
	Transmit(data []byte) error
	// Close releases resources.
	Close() error
	String() string
}
