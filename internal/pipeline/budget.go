package pipeline

import (
	"sync"

	"github.com/shirou/gopsutil/v3/mem"
)

// Per-frame cost model for the admission estimate: an RGBA working frame
// plus decoder, filter and encoder lookahead buffers in flight at once.
const (
	bytesPerPixel  = 4
	framesInFlight = 24

	// Admission happens before the source is probed, so the initial
	// reservation assumes the largest frame we expect to see.
	worstCaseWidth  = 3840
	worstCaseHeight = 2160
)

// EstimateJobBytes approximates the peak working-set of one render at the
// given frame size. The model is deliberately coarse; it only has to rank
// jobs consistently against the configured budget.
func EstimateJobBytes(width, height int) int64 {
	return int64(width) * int64(height) * bytesPerPixel * framesInFlight
}

// MemoryBudget gates job admission so the sum of per-job estimates never
// exceeds the configured limit. Reservations shrink after probing reveals
// the real resolution; they never grow, which keeps the cap sound.
type MemoryBudget struct {
	mu        sync.Mutex
	limit     int64
	committed int64
}

// NewMemoryBudget creates a budget capped at limitMB megabytes.
func NewMemoryBudget(limitMB int64) *MemoryBudget {
	return &MemoryBudget{limit: limitMB * 1024 * 1024}
}

// WorstCaseReservation is the pre-probe admission estimate, clamped to the
// limit so a single job can always make progress on a small budget.
func (b *MemoryBudget) WorstCaseReservation() int64 {
	est := EstimateJobBytes(worstCaseWidth, worstCaseHeight)
	if est > b.limit {
		return b.limit
	}
	return est
}

// TryAdmit reserves n bytes if they fit under the limit.
func (b *MemoryBudget) TryAdmit(n int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.committed+n > b.limit {
		return false
	}
	b.committed += n
	return true
}

// Shrink replaces a reservation with a smaller one once the real frame size
// is known, returning the bytes now held. A larger estimate is ignored:
// admission already charged the worst case, and growing a live reservation
// could push the committed total past the limit.
func (b *MemoryBudget) Shrink(old, actual int64) int64 {
	if actual >= old {
		return old
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed -= old - actual
	return actual
}

// Release returns a reservation to the pool.
func (b *MemoryBudget) Release(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed -= n
	if b.committed < 0 {
		b.committed = 0
	}
}

// Committed reports the bytes currently reserved.
func (b *MemoryBudget) Committed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

// virtualMemory is swapped out in tests.
var virtualMemory = mem.VirtualMemory

// SystemPressure reports whether the host itself is short on memory,
// independent of our own accounting. The scheduler backs off between
// attempts while this holds rather than piling encoders onto a box that
// is already swapping.
func SystemPressure(limitMB int64) bool {
	vm, err := virtualMemory()
	if err != nil {
		return false
	}
	return vm.Available < uint64(limitMB)*1024*1024
}
