/*
Copyright 2024 Tim St. Pierre
lcd1602 lines on a Linux GPIO character device
*/
package cdev

import (
	"fmt"
	"io"
	"strconv"

	gpio "github.com/temoto/gpio-cdev-go"
	pgpio "periph.io/x/conn/v3/gpio"

	lcd1602 "github.com/tstpierre-tc/lcd1602-gpio"
)

const consumer = "lcd1602"

// lineser is the part of gpio.Lineser the display uses.
type lineser interface {
	SetFunc(line uint32) gpio.LineSetFunc
	Flush() error
	Close() error
}

// Chip holds the six display lines requested from a GPIO chip.
type Chip struct {
	path  string
	chip  io.Closer
	lines lineser
	pins  lcd1602.Pins
}

// Open requests the lines in pm, given as offsets, as outputs on the chip
// at path, e.g. /dev/gpiochip0.
func Open(path string, pm lcd1602.PinMap) (*Chip, error) {
	offsets, err := Offsets(pm)
	if err != nil {
		return nil, err
	}
	chip, err := gpio.Open(path, consumer)
	if err != nil {
		return nil, fmt.Errorf("cdev %s: %w", path, err)
	}
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, consumer, offsets[:]...)
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("cdev %s: request lines %v: %w", path, offsets, err)
	}
	return newChip(path, chip, lines, offsets), nil
}

func newChip(path string, chip io.Closer, lines lineser, offsets [6]uint32) *Chip {
	c := &Chip{path: path, chip: chip, lines: lines}
	l := func(i int) lcd1602.Line {
		return &line{chip: c, offset: offsets[i], set: lines.SetFunc(offsets[i])}
	}
	c.pins = lcd1602.Pins{
		E: l(0), RS: l(1),
		D4: l(2), D5: l(3), D6: l(4), D7: l(5),
	}
	return c
}

// Offsets parses the pin map as line offsets in E, RS, D4..D7 order.
func Offsets(pm lcd1602.PinMap) ([6]uint32, error) {
	var out [6]uint32
	i := 0
	err := pm.Each(func(role, name string) error {
		n, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			return fmt.Errorf("cdev: pin %s %q is not a line offset", role, name)
		}
		out[i] = uint32(n)
		i++
		return nil
	})
	return out, err
}

// Pins returns the lines for lcd1602.NewPins.
func (c *Chip) Pins() *lcd1602.Pins {
	return &c.pins
}

func (c *Chip) String() string {
	return c.path
}

// Close releases the lines and the chip.
func (c *Chip) Close() error {
	err := c.lines.Close()
	if cerr := c.chip.Close(); err == nil {
		err = cerr
	}
	return err
}

type line struct {
	chip   *Chip
	offset uint32
	set    gpio.LineSetFunc
}

func (l *line) String() string {
	return fmt.Sprintf("%s:%d", l.chip.path, l.offset)
}

// Out sets the line and flushes it to the kernel.
func (l *line) Out(level pgpio.Level) error {
	var v byte
	if level {
		v = 1
	}
	l.set(v)
	return l.chip.lines.Flush()
}
