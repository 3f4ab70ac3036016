package ports

import "time"

// Clock supplies "now" to the services so window checks are testable. Every
// call reads a fresh value; services never cache it.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
