package lightpass

import (
	"time"
)

const clockWindow = 60

// Clock measures frame time. Tick is called once per frame and returns the seconds
// since the previous tick; averages cover the last clockWindow frames.
type Clock struct {
	now     func() time.Time
	started time.Time
	last    time.Time
	stopped time.Time
	running bool

	dt      float32
	frames  int
	samples [clockWindow]float32
	next    int
	filled  int
	sum     float32
	maxDt   float32
}

func NewClock() *Clock {
	return newClockWithSource(time.Now)
}

func newClockWithSource(now func() time.Time) *Clock {
	t := now()
	return &Clock{now: now, started: t, last: t, running: true}
}

func (c *Clock) Tick() float32 {
	if c == nil {
		return 0
	}
	if !c.running {
		c.dt = 0
		return 0
	}
	t := c.now()
	c.dt = float32(t.Sub(c.last).Seconds())
	c.last = t
	c.frames++

	c.sum -= c.samples[c.next]
	c.samples[c.next] = c.dt
	c.sum += c.dt
	c.next = (c.next + 1) % clockWindow
	if c.filled < clockWindow {
		c.filled++
	}
	if c.dt > c.maxDt {
		c.maxDt = c.dt
	}
	return c.dt
}

// GameTimeDelta is the dt returned by the last Tick.
func (c *Clock) GameTimeDelta() float32 {
	return c.dt
}

func (c *Clock) AverageSPF() float32 {
	if c.filled == 0 {
		return 0
	}
	return c.sum / float32(c.filled)
}

func (c *Clock) AverageFPS() float32 {
	spf := c.AverageSPF()
	if spf <= 0 {
		return 0
	}
	return 1 / spf
}

func (c *Clock) Frames() int {
	return c.frames
}

// Stop freezes the clock; later ticks return 0.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.stopped = c.now()
}

func (c *Clock) Elapsed() time.Duration {
	if c.running {
		return c.now().Sub(c.started)
	}
	return c.stopped.Sub(c.started)
}

func (c *Clock) ReportTimingData(log Logger) {
	elapsed := c.Elapsed()
	overall := float64(0)
	if elapsed > 0 {
		overall = float64(c.frames) / elapsed.Seconds()
	}
	log.Infof("timing: %d frames in %.2fs (%.1f fps overall, %.1f fps recent, worst frame %.2f ms)",
		c.frames, elapsed.Seconds(), overall, c.AverageFPS(), c.maxDt*1000)
}

type TimeModule struct{}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewClock())
}
