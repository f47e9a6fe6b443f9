/*
Copyright 2024 Tim St. Pierre
Controls a 1602 character LCD display wired directly to GPIO in 4-bit mode
*/
package lcd1602

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

const (
	// Commands
	CMD_Clear_Display = 0x01
	CMD_Return_Home   = 0x02
	CMD_Entry_Mode    = 0x04
	CMD_Display_On    = 0x0C // display on, cursor off, blink off
	CMD_DDRAM_Set     = 0x80

	// Options
	OPT_Decrement    = 0x02 // CMD_Entry_Mode, right to left
	OPT_Cursor_Shift = 0x01 // CMD_Entry_Mode

	// 4-bit interface handshake, written as a single nibble
	busWidth4 = 0x02

	// DDRAM address of the first cell on the second line
	line2Offset = 0x40

	Cols  = 16
	Lines = 2
)

// Execution times of the controller. There is no busy flag read-back, so
// every instruction is followed by one of these.
const (
	delayPowerOn     = 50 * time.Millisecond
	delayInstruction = 39 * time.Microsecond
	delayLong        = 1530 * time.Microsecond
	delayChar        = 320 * time.Microsecond
)

// BusWidth is the controller data interface width.
type BusWidth uint8

const (
	FourBits BusWidth = iota
	EightBits
)

func (w BusWidth) String() string {
	switch w {
	case FourBits:
		return "4-bit"
	case EightBits:
		return "8-bit"
	default:
		return fmt.Sprintf("BusWidth(%d)", uint8(w))
	}
}

// Direction is the address counter movement after each character write.
type Direction uint8

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "right-to-left"
	}
	return "left-to-right"
}

// Line is a digital output. Any gpio.PinOut satisfies it.
type Line interface {
	Out(l gpio.Level) error
}

// Dev is a HD44780 compatible 1602 display on a 4-bit parallel bus.
//
// Dev holds no mirror of the controller state. It owns its six lines
// exclusively and must not be used from more than one goroutine.
type Dev struct {
	en    Line
	rs    Line
	data  [4]Line // D4..D7
	timer Timer
	log   logrus.FieldLogger
}

// New initializes the display and returns the device.
//
// Use default options if nil is used.
func New(en, rs, d4, d5, d6, d7 Line, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{
		en:    en,
		rs:    rs,
		data:  [4]Line{d4, d5, d6, d7},
		timer: opts.timer(),
		log:   opts.logger(),
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewPins is New for a Pins set.
func NewPins(p *Pins, opts *Opts) (*Dev, error) {
	return New(p.E, p.RS, p.D4, p.D5, p.D6, p.D7, opts)
}

func (d *Dev) String() string {
	return fmt.Sprintf("lcd1602{E:%s RS:%s D4:%s D5:%s D6:%s D7:%s}",
		lineName(d.en), lineName(d.rs),
		lineName(d.data[0]), lineName(d.data[1]), lineName(d.data[2]), lineName(d.data[3]))
}

// Halt is a noop. The controller has no shutdown command and the lines
// are left as they are.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) init() error {
	d.delay(delayPowerOn)
	if err := d.SetBusWidth(FourBits); err != nil {
		return err
	}
	if err := d.command(CMD_Display_On); err != nil {
		return err
	}
	if err := d.Clear(); err != nil {
		return err
	}
	return d.SetEntryMode(RightToLeft, false)
}

// SetBusWidth selects the data interface width. Only FourBits is driven;
// EightBits is accepted and does nothing.
func (d *Dev) SetBusWidth(w BusWidth) error {
	switch w {
	case FourBits:
		d.log.Debugf("lcd1602: bus width %s", w)
		if err := d.writeBus(busWidth4); err != nil {
			return err
		}
		d.delay(delayInstruction)
		return nil
	case EightBits:
		return nil
	default:
		return fmt.Errorf("lcd1602: %s: %w", w, ErrUnsupportedBusWidth)
	}
}

// SetEntryMode sets the address counter direction and whether the display
// shifts with each write.
func (d *Dev) SetEntryMode(dir Direction, edgeTracking bool) error {
	option := byte(CMD_Entry_Mode)
	if dir == RightToLeft {
		option |= OPT_Decrement
	}
	if edgeTracking {
		option |= OPT_Cursor_Shift
	}
	if err := d.command(option); err != nil {
		return err
	}
	d.delay(delayInstruction)
	return nil
}

// SetPosition moves the cursor to col (0-15) on row (0 or 1). Positions off
// the display are ignored and nothing is sent.
func (d *Dev) SetPosition(col, row uint8) error {
	if col >= Cols {
		return nil
	}
	var address byte
	switch row {
	case 0:
		address = col
	case 1:
		address = col + line2Offset
	default:
		return nil
	}
	if err := d.command(CMD_DDRAM_Set | address); err != nil {
		return err
	}
	d.delay(delayLong)
	return nil
}

// Clear blanks the display and resets the address counter.
func (d *Dev) Clear() error {
	if err := d.command(CMD_Clear_Display); err != nil {
		return err
	}
	d.delay(delayLong)
	return nil
}

// Home returns the cursor to the first cell.
func (d *Dev) Home() error {
	if err := d.command(CMD_Return_Home); err != nil {
		return err
	}
	d.delay(delayLong)
	return nil
}

// Print writes s at the cursor. Each rune is sent as its low 8 bits, so only
// single byte code points come out right.
func (d *Dev) Print(s string) error {
	for _, r := range s {
		d.delay(delayChar)
		if err := d.writeChar(byte(r)); err != nil {
			return err
		}
	}
	d.delay(delayLong)
	return nil
}

// Write sends p as raw character codes with the same timing as Print.
func (d *Dev) Write(p []byte) (int, error) {
	for i, c := range p {
		d.delay(delayChar)
		if err := d.writeChar(c); err != nil {
			return i, err
		}
	}
	d.delay(delayLong)
	return len(p), nil
}

func (d *Dev) command(data byte) error {
	d.log.Debugf("lcd1602: command %08b %#02x", data, data)
	if err := d.out("RS", d.rs, gpio.Low); err != nil {
		return err
	}
	return d.write(data)
}

func (d *Dev) writeChar(data byte) error {
	d.log.Debugf("lcd1602: char %q %#02x", data, data)
	if err := d.out("RS", d.rs, gpio.High); err != nil {
		return err
	}
	return d.write(data)
}

// write sends the high nibble then the low nibble.
func (d *Dev) write(data byte) error {
	if err := d.writeBus(data >> 4); err != nil {
		return err
	}
	return d.writeBus(data & 0x0F)
}

// writeBus puts bits 0-3 of nibble on D4..D7 and strobes E.
func (d *Dev) writeBus(nibble byte) error {
	if err := d.out("E", d.en, gpio.Low); err != nil {
		return err
	}
	for i, l := range d.data {
		level := gpio.Level(nibble&(1<<i) != 0)
		if err := d.out(dataNames[i], l, level); err != nil {
			return err
		}
	}
	if err := d.out("E", d.en, gpio.High); err != nil {
		return err
	}
	return d.out("E", d.en, gpio.Low)
}

func (d *Dev) out(name string, l Line, level gpio.Level) error {
	if err := l.Out(level); err != nil {
		return fmt.Errorf("lcd1602: set %s %s: %w", name, level, err)
	}
	return nil
}

func (d *Dev) delay(t time.Duration) {
	d.timer.Sleep(t)
}

var dataNames = [4]string{"D4", "D5", "D6", "D7"}

func lineName(l Line) string {
	if s, ok := l.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", l)
}

var _ conn.Resource = &Dev{}
