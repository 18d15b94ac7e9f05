package engine

// update consumes the move queue built by the previous tick's update phase.
// Single fires the movement method at most once -- one agent for Physical,
// one pair for SwapPairs -- and then discards every other queued agent for
// the tick, however many were unhappy. Batch keeps firing while the queue
// still meets the method's minimum, then discards the unprocessable
// remainder. The choice materially changes how fast a run approaches
// equilibrium.
func (u UpdaterKind) update(m *Model) error {
	movement := m.rules.Movement
	minimum := movement.MinimumAgents()

	switch u {
	case Single:
		if len(m.moveList) >= minimum {
			if err := movement.move(m); err != nil {
				return err
			}
		}
	case Batch:
		for len(m.moveList) >= minimum {
			if err := movement.move(m); err != nil {
				return err
			}
		}
	}

	m.moveList = m.moveList[:0]
	return nil
}
