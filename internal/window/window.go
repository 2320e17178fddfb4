// Package window provides the fixed-capacity rolling buffer of price
// samples backing the dashboard chart.
package window

import "tradedesk/internal/model"

// Capacity is the number of samples the chart shows.
const Capacity = 20

// SampleWindow keeps the most recent samples in arrival order, evicting
// the oldest once Capacity is exceeded. It is a plain data structure:
// the dashboard controller is its only writer and it is not safe for
// concurrent use on its own.
type SampleWindow struct {
	samples []model.PriceSample
}

// New returns an empty window.
func New() *SampleWindow {
	return &SampleWindow{
		samples: make([]model.PriceSample, 0, Capacity),
	}
}

// Push appends a sample, evicting the oldest when the window is full.
func (w *SampleWindow) Push(s model.PriceSample) {
	if len(w.samples) == Capacity {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:Capacity-1]
	}
	w.samples = append(w.samples, s)
}

// Samples returns a copy of the window contents in arrival order.
func (w *SampleWindow) Samples() []model.PriceSample {
	out := make([]model.PriceSample, len(w.samples))
	copy(out, w.samples)
	return out
}

// Len returns the number of samples currently held.
func (w *SampleWindow) Len() int {
	return len(w.samples)
}

// Clear empties the window. Called on every instrument switch so the
// chart never mixes prices from two instruments.
func (w *SampleWindow) Clear() {
	w.samples = w.samples[:0]
}
