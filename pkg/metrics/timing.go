// Package metrics records timings for the panel's hot paths: rebuilds,
// filter and visibility passes, layout loading and rendering.
//
// Recording uses atomics and is on by default; set COLPANEL_METRICS=0 to turn
// it off. `colpanel --stats` prints a summary on exit.
//
//	func (c *Controller) refresh() {
//	    defer metrics.Timer(metrics.VisibilityRefresh)()
//	    ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("COLPANEL_METRICS") != "0")
}

// Enabled reports whether timings are recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns recording on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations for one operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for {
		cur := m.max.Load()
		if ns <= cur || m.max.CompareAndSwap(cur, ns) {
			break
		}
	}
	for {
		cur := m.min.Load()
		if cur != 0 && ns >= cur {
			break
		}
		if m.min.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Reset clears every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is a snapshot of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.total.Load()
	st := TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		MaxMs:   float64(m.max.Load()) / 1e6,
		MinMs:   float64(m.min.Load()) / 1e6,
	}
	if count > 0 {
		st.AvgMs = float64(total/count) / 1e6
	}
	return st
}

// Timer starts timing m and returns the function that stops it.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Metrics for the panel's operations.
var (
	PanelRebuild      = newTimingMetric("panel_rebuild")
	FilterCompute     = newTimingMetric("filter_compute")
	VisibilityRefresh = newTimingMetric("visibility_refresh")
	LayoutLoad        = newTimingMetric("layout_load")
	StateSave         = newTimingMetric("state_save")
	UIRender          = newTimingMetric("ui_render")
)

// All returns every registered metric.
func All() []*TimingMetric {
	return []*TimingMetric{
		PanelRebuild,
		FilterCompute,
		VisibilityRefresh,
		LayoutLoad,
		StateSave,
		UIRender,
	}
}

// ResetAll resets every registered metric.
func ResetAll() {
	for _, m := range All() {
		m.Reset()
	}
}

// AllStats returns snapshots of the metrics that have samples.
func AllStats() []TimingStats {
	var out []TimingStats
	for _, m := range All() {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// WriteSummary prints one line per metric with samples.
func WriteSummary(w io.Writer) {
	stats := AllStats()
	if len(stats) == 0 {
		fmt.Fprintln(w, "no timings recorded")
		return
	}
	for _, st := range stats {
		fmt.Fprintf(w, "%-20s n=%-6d avg=%.3fms max=%.3fms total=%.1fms\n",
			st.Name, st.Count, st.AvgMs, st.MaxMs, st.TotalMs)
	}
}
