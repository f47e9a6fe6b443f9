/*
Copyright 2024 Tim St. Pierre
Pin lookup for the lcd1602 character display
*/
package lcd1602

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Pins are the six lines the display is wired to.
type Pins struct {
	E, RS          Line
	D4, D5, D6, D7 Line
}

// PinMap names the lines. With periph these are gpioreg names or numbers,
// with a GPIO character device they are line offsets.
type PinMap struct {
	E  string `hcl:"e"`
	RS string `hcl:"rs"`
	D4 string `hcl:"d4"`
	D5 string `hcl:"d5"`
	D6 string `hcl:"d6"`
	D7 string `hcl:"d7"`
}

// Each calls fn for every pin in E, RS, D4..D7 order.
func (pm PinMap) Each(fn func(role, name string) error) error {
	for _, p := range [...]struct{ role, name string }{
		{"e", pm.E}, {"rs", pm.RS},
		{"d4", pm.D4}, {"d5", pm.D5}, {"d6", pm.D6}, {"d7", pm.D7},
	} {
		if err := fn(p.role, p.name); err != nil {
			return err
		}
	}
	return nil
}

// ByName looks the pins up in the periph registry. host.Init must have been
// called first.
func ByName(pm PinMap) (*Pins, error) {
	var found []Line
	err := pm.Each(func(role, name string) error {
		if name == "" {
			return fmt.Errorf("lcd1602: pin %s not set", role)
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return fmt.Errorf("lcd1602: pin %s %q not found", role, name)
		}
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("lcd1602: pin %s %q: %w", role, name, err)
		}
		found = append(found, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Pins{
		E: found[0], RS: found[1],
		D4: found[2], D5: found[3], D6: found[4], D7: found[5],
	}, nil
}
