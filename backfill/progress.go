package backfill

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressMeter keeps a single carriage-returned status line for a run,
// counting each thought by outcome as it finishes.
type progressMeter struct {
	mu sync.Mutex
	w  io.Writer

	total    int
	every    int
	done     int
	embedded int
	failed   int
	unshown  int

	began   time.Time
	running bool
}

// newProgressMeter redraws the line every `every` outcomes; values below one
// redraw on every outcome.
func newProgressMeter(w io.Writer, total, every int) *progressMeter {
	if w == nil {
		w = io.Discard
	}
	return &progressMeter{w: w, total: total, every: max(every, 1)}
}

func (m *progressMeter) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.done, m.embedded, m.failed, m.unshown = 0, 0, 0, 0
	m.began = time.Now()
	m.running = true
}

// Record counts one finished thought. A non-nil err counts it as failed.
func (m *progressMeter) Record(embedded bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.done >= m.total {
		return
	}
	m.done++
	switch {
	case err != nil:
		m.failed++
	case embedded:
		m.embedded++
	}

	m.unshown++
	if m.unshown >= m.every {
		m.draw()
	}
}

// Finish draws the final line, ends it, and returns how long the run took.
func (m *progressMeter) Finish() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return 0
	}
	m.draw()
	fmt.Fprintln(m.w)
	m.running = false
	return time.Since(m.began)
}

// draw writes the status line. The caller holds mu.
func (m *progressMeter) draw() {
	m.unshown = 0

	pct := 100.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total) * 100
	}

	elapsed := time.Since(m.began)
	eta := "-"
	if m.done > 0 && m.done < m.total {
		perThought := elapsed / time.Duration(m.done)
		eta = (perThought * time.Duration(m.total-m.done)).Round(time.Second).String()
	}

	fmt.Fprintf(m.w, "\rBackfill %d/%d (%.1f%%) embedded %d, failed %d, eta %s",
		m.done, m.total, pct, m.embedded, m.failed, eta)
}
