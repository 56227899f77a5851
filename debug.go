package lightpillar

import (
	"time"

	"github.com/charmbracelet/log"
)

// debugLogInterval is how many ticks are aggregated per debug log line.
const debugLogInterval = 60

// frameStats aggregates draw timings between debug log lines.
// Only populated when Options.Debug is set.
type frameStats struct {
	frames  int
	drawn   int
	total   time.Duration
	slowest time.Duration
}

func (s *frameStats) record(d time.Duration, drawn bool) {
	s.frames++
	if drawn {
		s.drawn++
	}
	s.total += d
	if d > s.slowest {
		s.slowest = d
	}
}

// maybeLog emits one debug line every debugLogInterval frames and resets.
func (s *frameStats) maybeLog(logger *log.Logger, st *RenderState) {
	if s.frames < debugLogInterval {
		return
	}
	avg := s.total / time.Duration(s.frames)
	logger.Debug("frames",
		"count", s.frames,
		"drawn", s.drawn,
		"avg", avg,
		"slowest", s.slowest,
		"elapsed", st.Elapsed,
		"size", [2]int{st.Width, st.Height},
	)
	*s = frameStats{}
}
