/*
Copyright 2024 Tim St. Pierre
Errors of the lcd1602 character display
*/
package lcd1602

import "errors"

var (
	// ErrInvalidCursorPos is reserved for positions off the display.
	// SetPosition ignores such positions instead of returning it.
	ErrInvalidCursorPos = errors.New("lcd1602: invalid cursor position")

	// ErrUnsupportedBusWidth is returned by SetBusWidth for a value that is
	// neither FourBits nor EightBits.
	ErrUnsupportedBusWidth = errors.New("lcd1602: unsupported bus width")
)
