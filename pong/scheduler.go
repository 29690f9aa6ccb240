package pong

// System is one stage of a match tick.
type System interface {
	Update(m *Match, dt float64) error
}

type SystemFunc func(m *Match, dt float64) error

func (f SystemFunc) Update(m *Match, dt float64) error {
	return f(m, dt)
}

// Scheduler runs systems in the order they were added. The first failing
// system ends the tick.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(m *Match, dt float64) error {
	for _, system := range s.systems {
		if err := system.Update(m, dt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
