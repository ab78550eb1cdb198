package session

import "time"

// SetFinishGrace shortens the TurnFinished wait for tests.
func SetFinishGrace(d time.Duration) (restore func()) {
	old := finishGrace
	finishGrace = d
	return func() { finishGrace = old }
}
