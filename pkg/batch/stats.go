package batch

import "time"

type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Processed int
	Errored   int
	Skipped   int
}

// Elapsed is measured up to EndTime once the run is over.
func (s *Stats) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

func (s *Stats) PerSecond() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(s.Processed) / elapsed
}

func (s *Stats) record(res Result) {
	switch {
	case res.Skipped:
		s.Skipped++
	case res.Err != nil:
		s.Errored++
	default:
		s.Processed++
	}
}
