package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu      *sync.Mutex
	tags    map[string]int64
	elapsed time.Duration
	total   int64
	errors  int64
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) AddError() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.errors++
}

func (mt *DefaultMetric) AddTag(tag string) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.tags[tag]++
}

// AVGDuration is the average duration of the successful calls, rounded for display.
func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

func (mt *DefaultMetric) Total() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) Errors() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.errors
}

func (mt *DefaultMetric) Tags() map[string]int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	res := make(map[string]int64, len(mt.tags))
	for tag, count := range mt.tags {
		res[tag] = count
	}

	return res
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
