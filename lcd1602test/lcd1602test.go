/*
Copyright 2024 Tim St. Pierre
Recording lines and timer for testing code that drives the lcd1602 display
*/
package lcd1602test

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Event is one level change on a line, or one timer suspension when Line
// is empty.
type Event struct {
	Line  string
	Level gpio.Level
	Delay time.Duration
}

func (e Event) String() string {
	if e.Line == "" {
		return fmt.Sprintf("sleep %s", e.Delay)
	}
	return fmt.Sprintf("%s=%s", e.Line, e.Level)
}

// Op is what the controller sees: a nibble latched on the falling edge of E,
// or a delay.
type Op struct {
	Delay  time.Duration // zero for a strobe
	RS     gpio.Level
	Nibble byte
}

func (o Op) String() string {
	if o.Delay != 0 {
		return fmt.Sprintf("sleep %s", o.Delay)
	}
	if o.RS {
		return fmt.Sprintf("data %#x", o.Nibble)
	}
	return fmt.Sprintf("cmd %#x", o.Nibble)
}

// Strobe returns the Op for a nibble latched with the given register select.
func Strobe(rs gpio.Level, nibble byte) Op {
	return Op{RS: rs, Nibble: nibble}
}

// Sleep returns the Op for a delay.
func Sleep(d time.Duration) Op {
	return Op{Delay: d}
}

// Recorder owns a set of fake lines and acts as the timer. It keeps every
// event in order.
type Recorder struct {
	Events []Event

	lines map[string]*Line
}

// Names of the lines Pins returns.
const (
	E  = "E"
	RS = "RS"
	D4 = "D4"
	D5 = "D5"
	D6 = "D6"
	D7 = "D7"
)

// NewRecorder returns a Recorder with the six display lines, all low.
func NewRecorder() *Recorder {
	r := &Recorder{lines: map[string]*Line{}}
	for _, n := range []string{E, RS, D4, D5, D6, D7} {
		r.lines[n] = &Line{N: n, r: r}
	}
	return r
}

// Line returns the line called name.
func (r *Recorder) Line(name string) *Line {
	return r.lines[name]
}

// Pins returns the lines in E, RS, D4, D5, D6, D7 order.
func (r *Recorder) Pins() (e, rs, d4, d5, d6, d7 *Line) {
	return r.lines[E], r.lines[RS], r.lines[D4], r.lines[D5], r.lines[D6], r.lines[D7]
}

// Sleep records d and returns immediately.
func (r *Recorder) Sleep(d time.Duration) {
	r.Events = append(r.Events, Event{Delay: d})
}

// Reset forgets the recorded events. Line levels are kept.
func (r *Recorder) Reset() {
	r.Events = nil
}

// Delays returns the recorded delays in order.
func (r *Recorder) Delays() []time.Duration {
	var out []time.Duration
	for _, e := range r.Events {
		if e.Line == "" {
			out = append(out, e.Delay)
		}
	}
	return out
}

// Ops decodes the events into latched nibbles and delays. A nibble is
// latched when E goes from high to low; it is the D4..D7 levels and RS at
// that moment.
func (r *Recorder) Ops() []Op {
	levels := map[string]gpio.Level{}
	var out []Op
	for _, e := range r.Events {
		if e.Line == "" {
			out = append(out, Sleep(e.Delay))
			continue
		}
		prev := levels[e.Line]
		levels[e.Line] = e.Level
		if e.Line != E || !(prev == gpio.High && e.Level == gpio.Low) {
			continue
		}
		var n byte
		for i, d := range []string{D4, D5, D6, D7} {
			if levels[d] {
				n |= 1 << i
			}
		}
		out = append(out, Strobe(levels[RS], n))
	}
	return out
}

// Bytes pairs consecutive latched nibbles, high nibble first, ignoring
// delays. A trailing odd nibble is dropped.
func (r *Recorder) Bytes() []byte {
	var nibbles []byte
	for _, o := range r.Ops() {
		if o.Delay == 0 {
			nibbles = append(nibbles, o.Nibble)
		}
	}
	out := make([]byte, 0, len(nibbles)/2)
	for i := 0; i+1 < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

// Pulses counts the rising edges on E.
func (r *Recorder) Pulses() int {
	n := 0
	var prev gpio.Level
	for _, e := range r.Events {
		if e.Line != E {
			continue
		}
		if !prev && e.Level {
			n++
		}
		prev = e.Level
	}
	return n
}

// Line is a fake output line.
type Line struct {
	N string
	L gpio.Level

	// Err is returned by Out when set. The level is left unchanged.
	Err error

	r *Recorder
}

func (l *Line) String() string {
	return l.N
}

// Out records the level change.
func (l *Line) Out(level gpio.Level) error {
	if l.Err != nil {
		return l.Err
	}
	l.L = level
	l.r.Events = append(l.r.Events, Event{Line: l.N, Level: level})
	return nil
}
