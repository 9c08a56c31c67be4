package domain

import "time"

// Clock abstracts the time source so event timestamps and created_at values
// are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns the wall-clock time source.
func SystemClock() Clock {
	return systemClock{}
}
