package cache

import "time"

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time {
	return m.now
}
