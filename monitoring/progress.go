package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks one running sweep. It is served as JSON by the
// monitor and updated by the measuring workers, so updates are locked.
type ProgressBar struct {
	sync.Mutex `json:"-"`

	monitor *Monitor

	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// Advance records that amount more iterations have completed.
func (b *ProgressBar) Advance(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// Complete marks the sweep finished and removes the bar from the monitor.
func (b *ProgressBar) Complete() {
	b.monitor.completeProgressBar(b)
}
