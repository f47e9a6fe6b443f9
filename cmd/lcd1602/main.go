/*
Copyright 2024 Tim St. Pierre
Prints text on a 1602 character LCD wired to GPIO in 4-bit mode
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/host/v3"

	lcd1602 "github.com/tstpierre-tc/lcd1602-gpio"
	"github.com/tstpierre-tc/lcd1602-gpio/cdev"
	"github.com/tstpierre-tc/lcd1602-gpio/internal/config"
)

type options struct {
	config  string
	clear   bool
	home    bool
	col     uint
	row     uint
	rtl     bool
	verbose bool
	text    string
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("lcd1602", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), "Usage: lcd1602 [option...] text...\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&o.config, "config", "/etc/lcd1602.hcl", "config file")
	fs.BoolVar(&o.clear, "clear", false, "clear the display first")
	fs.BoolVar(&o.home, "home", false, "return the cursor home first")
	fs.UintVar(&o.col, "col", 0, "cursor column, 0-15")
	fs.UintVar(&o.row, "row", 0, "cursor row, 0 or 1")
	fs.BoolVar(&o.rtl, "rtl", false, "write right to left")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.col > 255 || o.row > 255 {
		return nil, errors.NotValidf("position %d,%d", o.col, o.row)
	}
	o.text = strings.Join(fs.Args(), " ")
	return o, nil
}

func openPins(c *config.Config) (*lcd1602.Pins, io.Closer, error) {
	switch c.Backend {
	case config.BackendCdev:
		chip, err := cdev.Open(c.Chip, c.Pins)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		return chip.Pins(), chip, nil
	default:
		if _, err := host.Init(); err != nil {
			return nil, nil, errors.Annotate(err, "periph host init")
		}
		pins, err := lcd1602.ByName(c.Pins)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		return pins, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// show runs the requested operations on an initialized display.
func show(dev *lcd1602.Dev, o *options) error {
	if o.clear {
		if err := dev.Clear(); err != nil {
			return errors.Annotate(err, "clear")
		}
	}
	if o.home {
		if err := dev.Home(); err != nil {
			return errors.Annotate(err, "home")
		}
	}
	dir := lcd1602.LeftToRight
	if o.rtl {
		dir = lcd1602.RightToLeft
	}
	if err := dev.SetEntryMode(dir, false); err != nil {
		return errors.Annotate(err, "entry mode")
	}
	if err := dev.SetPosition(uint8(o.col), uint8(o.row)); err != nil {
		return errors.Annotate(err, "position")
	}
	if o.text == "" {
		return nil
	}
	return errors.Annotate(dev.Print(o.text), "print")
}

func run(args []string) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	c, err := config.Load(o.config)
	if err != nil {
		return err
	}
	level, _ := c.Level()
	if o.verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	pins, closer, err := openPins(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	dev, err := lcd1602.NewPins(pins, &lcd1602.Opts{Logger: log.WithField("backend", c.Backend)})
	if err != nil {
		return errors.Annotate(err, "init")
	}
	log.Infof("%s ready", dev)
	return show(dev, o)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(errors.ErrorStack(err))
	}
}
