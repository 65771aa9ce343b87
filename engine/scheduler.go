package engine

// System is one stage of the per-frame update.
type System interface {
	Update(dt float64)
}

type stage struct {
	name   string
	system System
}

// Scheduler runs named stages in the order they were added.
type Scheduler struct {
	stages []stage
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Add(name string, system System) {
	if system == nil {
		return
	}
	s.stages = append(s.stages, stage{name: name, system: system})
}

func (s *Scheduler) Update(dt float64) {
	for _, st := range s.stages {
		st.system.Update(dt)
	}
}

// Stages returns the stage names in run order.
func (s *Scheduler) Stages() []string {
	names := make([]string, 0, len(s.stages))
	for _, st := range s.stages {
		names = append(names, st.name)
	}
	return names
}
