package presentation

import "sync"

// Fanout broadcasts every sink callback to all registered sinks, so the
// console output and the control API can observe the same transitions.
type Fanout struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewFanout creates a fan-out sink.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add registers another sink.
func (f *Fanout) Add(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

func (f *Fanout) OnPhaseChange(phase string, title string, position *Position) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sinks {
		s.OnPhaseChange(phase, title, position)
	}
}

func (f *Fanout) OnError(message string, isFatal bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sinks {
		s.OnError(message, isFatal)
	}
}

func (f *Fanout) OnLoadingStateChange(isLoading bool, message string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sinks {
		s.OnLoadingStateChange(isLoading, message)
	}
}
