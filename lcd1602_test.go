package lcd1602_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	lcd1602 "github.com/tstpierre-tc/lcd1602-gpio"
	"github.com/tstpierre-tc/lcd1602-gpio/lcd1602test"
)

var (
	_ lcd1602.Line  = &lcd1602test.Line{}
	_ lcd1602.Timer = &lcd1602test.Recorder{}
	_ lcd1602.Timer = lcd1602.SleepTimer{}
)

func newDev(t *testing.T) (*lcd1602.Dev, *lcd1602test.Recorder) {
	t.Helper()
	r := lcd1602test.NewRecorder()
	logger, _ := test.NewNullLogger()
	e, rs, d4, d5, d6, d7 := r.Pins()
	dev, err := lcd1602.New(e, rs, d4, d5, d6, d7, &lcd1602.Opts{Timer: r, Logger: logger})
	require.NoError(t, err)
	r.Reset()
	return dev, r
}

func cmd(n byte) lcd1602test.Op  { return lcd1602test.Strobe(gpio.Low, n) }
func data(n byte) lcd1602test.Op { return lcd1602test.Strobe(gpio.High, n) }
func sleep(us int) lcd1602test.Op {
	return lcd1602test.Sleep(time.Duration(us) * time.Microsecond)
}

func TestInit(t *testing.T) {
	r := lcd1602test.NewRecorder()
	logger, _ := test.NewNullLogger()
	e, rs, d4, d5, d6, d7 := r.Pins()
	dev, err := lcd1602.New(e, rs, d4, d5, d6, d7, &lcd1602.Opts{Timer: r, Logger: logger})
	require.NoError(t, err)
	require.NotNil(t, dev)

	assert.Equal(t, []time.Duration{
		50 * time.Millisecond,
		39 * time.Microsecond,
		1530 * time.Microsecond,
		39 * time.Microsecond,
	}, r.Delays())

	assert.Equal(t, []lcd1602test.Op{
		sleep(50000),
		cmd(0x2), // 4-bit handshake
		sleep(39),
		cmd(0x0), cmd(0xC), // display on
		cmd(0x0), cmd(0x1), // clear
		sleep(1530),
		cmd(0x0), cmd(0x6), // entry mode, right to left
		sleep(39),
	}, r.Ops())
}

func TestInitLineFault(t *testing.T) {
	r := lcd1602test.NewRecorder()
	boom := errors.New("boom")
	r.Line(lcd1602test.D5).Err = boom
	e, rs, d4, d5, d6, d7 := r.Pins()
	dev, err := lcd1602.New(e, rs, d4, d5, d6, d7, &lcd1602.Opts{Timer: r})
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "D5")
	// The power on delay ran, the handshake never reached the strobe.
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, r.Delays())
	assert.Zero(t, r.Pulses())
}

func TestSetBusWidth(t *testing.T) {
	dev, r := newDev(t)

	require.NoError(t, dev.SetBusWidth(lcd1602.FourBits))
	assert.Equal(t, []lcd1602test.Event{
		{Line: "E", Level: gpio.Low},
		{Line: "D4", Level: gpio.Low},
		{Line: "D5", Level: gpio.High},
		{Line: "D6", Level: gpio.Low},
		{Line: "D7", Level: gpio.Low},
		{Line: "E", Level: gpio.High},
		{Line: "E", Level: gpio.Low},
		{Delay: 39 * time.Microsecond},
	}, r.Events)

	r.Reset()
	require.NoError(t, dev.SetBusWidth(lcd1602.EightBits))
	assert.Empty(t, r.Events)

	err := dev.SetBusWidth(lcd1602.BusWidth(7))
	assert.ErrorIs(t, err, lcd1602.ErrUnsupportedBusWidth)
	assert.Empty(t, r.Events)
}

func TestSetEntryMode(t *testing.T) {
	for _, tc := range []struct {
		dir  lcd1602.Direction
		edge bool
		want byte
	}{
		{lcd1602.LeftToRight, false, 0x04},
		{lcd1602.LeftToRight, true, 0x05},
		{lcd1602.RightToLeft, false, 0x06},
		{lcd1602.RightToLeft, true, 0x07},
	} {
		t.Run(fmt.Sprintf("%s/%t", tc.dir, tc.edge), func(t *testing.T) {
			dev, r := newDev(t)
			require.NoError(t, dev.SetEntryMode(tc.dir, tc.edge))
			assert.Equal(t, []byte{tc.want}, r.Bytes())
			assert.Equal(t, []time.Duration{39 * time.Microsecond}, r.Delays())
		})
	}
}

func TestSetPosition(t *testing.T) {
	for _, tc := range []struct {
		col, row uint8
		want     byte
	}{
		{0, 0, 0x80},
		{3, 0, 0x83},
		{15, 0, 0x8F},
		{0, 1, 0xC0},
		{15, 1, 0xCF},
	} {
		t.Run(fmt.Sprintf("%d,%d", tc.col, tc.row), func(t *testing.T) {
			dev, r := newDev(t)
			require.NoError(t, dev.SetPosition(tc.col, tc.row))
			require.NoError(t, dev.SetPosition(tc.col, tc.row))
			assert.Equal(t, []byte{tc.want, tc.want}, r.Bytes())
			assert.Equal(t, []lcd1602test.Op{
				cmd(tc.want >> 4), cmd(tc.want & 0xF), sleep(1530),
				cmd(tc.want >> 4), cmd(tc.want & 0xF), sleep(1530),
			}, r.Ops())
		})
	}
}

func TestSetPositionOffDisplay(t *testing.T) {
	dev, r := newDev(t)
	for _, p := range [][2]uint8{{16, 0}, {16, 1}, {0, 2}, {255, 255}, {5, 3}} {
		assert.NoError(t, dev.SetPosition(p[0], p[1]), "%v", p)
	}
	assert.Empty(t, r.Events)
}

func TestClearHome(t *testing.T) {
	dev, r := newDev(t)
	require.NoError(t, dev.Clear())
	assert.Equal(t, []lcd1602test.Op{cmd(0x0), cmd(0x1), sleep(1530)}, r.Ops())

	r.Reset()
	require.NoError(t, dev.Home())
	assert.Equal(t, []lcd1602test.Op{cmd(0x0), cmd(0x2), sleep(1530)}, r.Ops())
	assert.Equal(t, 2, r.Pulses())
}

func TestPrint(t *testing.T) {
	dev, r := newDev(t)

	require.NoError(t, dev.Print(""))
	assert.Equal(t, []lcd1602test.Op{sleep(1530)}, r.Ops())

	r.Reset()
	require.NoError(t, dev.Print("A"))
	assert.Equal(t, []lcd1602test.Op{sleep(320), data(0x4), data(0x1), sleep(1530)}, r.Ops())

	r.Reset()
	require.NoError(t, dev.Print("Hi!"))
	assert.Equal(t, []byte("Hi!"), r.Bytes())
	assert.Equal(t, 6, r.Pulses())
	assert.Len(t, r.Delays(), 4)
}

func TestPrintTruncatesRunes(t *testing.T) {
	dev, r := newDev(t)
	require.NoError(t, dev.Print("é€"))
	// U+00E9 and U+20AC keep only their low byte.
	assert.Equal(t, []byte{0xE9, 0xAC}, r.Bytes())
}

func TestWrite(t *testing.T) {
	dev, r := newDev(t)
	n, err := fmt.Fprintf(dev, "%02d:%02d", 9, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("09:05"), r.Bytes())
	assert.Equal(t, 1530*time.Microsecond, r.Delays()[5])
}

func TestWriteLineFault(t *testing.T) {
	dev, r := newDev(t)
	boom := errors.New("boom")
	r.Line(lcd1602test.RS).Err = boom
	n, err := dev.Write([]byte("ab"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "set RS High")
}

func TestCommandLineFault(t *testing.T) {
	dev, r := newDev(t)
	boom := errors.New("boom")
	r.Line(lcd1602test.E).Err = boom
	for name, fn := range map[string]func() error{
		"clear":    dev.Clear,
		"home":     dev.Home,
		"position": func() error { return dev.SetPosition(1, 1) },
		"entry":    func() error { return dev.SetEntryMode(lcd1602.LeftToRight, false) },
		"print":    func() error { return dev.Print("x") },
	} {
		err := fn()
		assert.ErrorIs(t, err, boom, name)
	}
	// No delay follows a failed command.
	assert.Equal(t, []time.Duration{320 * time.Microsecond}, r.Delays())
}

func TestDebugLog(t *testing.T) {
	r := lcd1602test.NewRecorder()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e, rs, d4, d5, d6, d7 := r.Pins()
	dev, err := lcd1602.New(e, rs, d4, d5, d6, d7, &lcd1602.Opts{Timer: r, Logger: logger})
	require.NoError(t, err)
	// bus width, display on, clear, entry mode
	assert.Len(t, hook.AllEntries(), 4)

	hook.Reset()
	require.NoError(t, dev.Print("A"))
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "'A'")
}

func TestStringHalt(t *testing.T) {
	dev, r := newDev(t)
	assert.Equal(t, "lcd1602{E:E RS:RS D4:D4 D5:D5 D6:D6 D7:D7}", dev.String())
	assert.NoError(t, dev.Halt())
	assert.Empty(t, r.Events)
}

func TestEnumString(t *testing.T) {
	assert.Equal(t, "4-bit", lcd1602.FourBits.String())
	assert.Equal(t, "8-bit", lcd1602.EightBits.String())
	assert.Equal(t, "BusWidth(9)", lcd1602.BusWidth(9).String())
	assert.Equal(t, "left-to-right", lcd1602.LeftToRight.String())
	assert.Equal(t, "right-to-left", lcd1602.RightToLeft.String())
}

type nopTimer struct{}

func (nopTimer) Sleep(time.Duration) {}
