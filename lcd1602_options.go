/*
Copyright 2024 Tim St. Pierre
Options for lcd1602 character display
*/
package lcd1602

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Opts struct {
	// Suspends the caller for the controller execution times.
	// SleepTimer when nil.
	Timer Timer
	// Receives a Debug trace of every byte sent.
	// logrus.StandardLogger() when nil.
	Logger logrus.FieldLogger
}

var DefaultOpts = Opts{
	Timer: SleepTimer{},
}

func (o *Opts) timer() Timer {
	if o.Timer == nil {
		return SleepTimer{}
	}
	return o.Timer
}

func (o *Opts) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// Timer suspends the calling goroutine. A started Sleep always runs to the
// end; there is no way to cut it short.
type Timer interface {
	Sleep(d time.Duration)
}

// SleepTimer is a Timer on time.Sleep.
type SleepTimer struct{}

func (SleepTimer) Sleep(d time.Duration) {
	time.Sleep(d)
}
