package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick and keeps per-phase
// timing. Systems within one phase keep their registration order.
type Runner struct {
	systems []System
	sorted  bool
	ticks   uint64
	spent   [phaseCount]time.Duration
	now     func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		now:     time.Now,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.run(s, dt)
	}
	r.ticks++
}

// TickPhase runs only the systems registered for phase.
// Used on shutdown to flush events without advancing the simulation.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.run(s, dt)
		}
	}
}

func (r *Runner) run(s System, dt time.Duration) {
	start := r.now()
	s.Update(dt)
	if p := s.Phase(); p >= 0 && p < phaseCount {
		r.spent[p] += r.now().Sub(start)
	}
}

// Ticks returns the number of completed full ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

// PhaseStat is the time spent in one phase since the runner was created.
type PhaseStat struct {
	Phase   Phase
	Total   time.Duration
	PerTick time.Duration
}

// Stats reports the time spent per phase, in phase order.
func (r *Runner) Stats() []PhaseStat {
	stats := make([]PhaseStat, 0, phaseCount)
	for p := Phase(0); p < phaseCount; p++ {
		st := PhaseStat{Phase: p, Total: r.spent[p]}
		if r.ticks > 0 {
			st.PerTick = st.Total / time.Duration(r.ticks)
		}
		stats = append(stats, st)
	}
	return stats
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
