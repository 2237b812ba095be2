package field

import "time"

// StepStats describes one executed frame.
type StepStats struct {
	Particles int
	Lines     int
	Update    time.Duration
	Draw      time.Duration
	Connect   time.Duration
}

// Total returns the time spent in the step.
func (s StepStats) Total() time.Duration {
	return s.Update + s.Draw + s.Connect
}

// Observer receives frame loop events. Calls happen on the loop goroutine.
type Observer interface {
	FrameSkipped()
	FrameExecuted(stats StepStats)
	Reseeded(count int)
}

type nopObserver struct{}

func (nopObserver) FrameSkipped()           {}
func (nopObserver) FrameExecuted(StepStats) {}
func (nopObserver) Reseeded(int)            {}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) FrameSkipped() {
	for _, ob := range o {
		ob.FrameSkipped()
	}
}

func (o Observers) FrameExecuted(stats StepStats) {
	for _, ob := range o {
		ob.FrameExecuted(stats)
	}
}

func (o Observers) Reseeded(count int) {
	for _, ob := range o {
		ob.Reseeded(count)
	}
}
