/*
Copyright 2024 Tim St. Pierre
HCL configuration of the lcd1602 command
*/
package config

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	lcd1602 "github.com/tstpierre-tc/lcd1602-gpio"
	"github.com/tstpierre-tc/lcd1602-gpio/cdev"
)

const (
	BackendPeriph = "periph"
	BackendCdev   = "cdev"
)

type Config struct {
	// periph resolves pins by gpioreg name, cdev by chip line offset.
	Backend  string         `hcl:"backend,optional"`
	Chip     string         `hcl:"chip,optional"`
	LogLevel string         `hcl:"log_level,optional"`
	Pins     lcd1602.PinMap `hcl:"pins,block"`
}

var Default = Config{
	Backend:  BackendPeriph,
	Chip:     "/dev/gpiochip0",
	LogLevel: "info",
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	c := Default
	if err := hclsimple.DecodeFile(path, nil, &c); err != nil {
		return nil, errors.Annotatef(err, "config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Annotatef(err, "config %s", path)
	}
	return &c, nil
}

// Parse is Load for src already in memory. filename must end in .hcl.
func Parse(filename string, src []byte) (*Config, error) {
	c := Default
	if err := hclsimple.Decode(filename, src, nil, &c); err != nil {
		return nil, errors.Annotatef(err, "config %s", filename)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Annotatef(err, "config %s", filename)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return errors.NotValidf("log_level %q", c.LogLevel)
	}
	err := c.Pins.Each(func(role, name string) error {
		if name == "" {
			return errors.NotValidf("empty pin %s", role)
		}
		return nil
	})
	if err != nil {
		return err
	}
	switch c.Backend {
	case BackendPeriph:
		return nil
	case BackendCdev:
		if c.Chip == "" {
			return errors.NotValidf("empty chip for cdev backend")
		}
		_, err := cdev.Offsets(c.Pins)
		return errors.Trace(err)
	default:
		return errors.NotValidf("backend %q", c.Backend)
	}
}

func (c *Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}
