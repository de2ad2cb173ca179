package pim

// Take returns a Streamer which streams at most n samples from s. It cuts a finite burst out
// of an infinite generator; n of zero yields an empty Streamer.
//
// The returned Streamer propagates s's errors through Err.
func Take(n int, s Streamer) Streamer {
	return &take{
		s:          s,
		currSample: 0,
		numSamples: n,
	}
}

type take struct {
	s          Streamer
	currSample int
	numSamples int
}

func (t *take) Stream(samples []float64) (n int, ok bool) {
	if t.currSample >= t.numSamples {
		return 0, false
	}
	toStream := t.numSamples - t.currSample
	if len(samples) < toStream {
		toStream = len(samples)
	}
	n, ok = t.s.Stream(samples[:toStream])
	t.currSample += n
	return n, ok
}

func (t *take) Err() error {
	return t.s.Err()
}

// Loop takes a StreamSeeker and plays it count times. If count is negative, s is looped infinitely.
// Consecutive passes are joined without any gap.
//
// The returned Streamer propagates s's errors.
func Loop(count int, s StreamSeeker) Streamer {
	return &loop{
		s:       s,
		remains: count,
	}
}

type loop struct {
	s       StreamSeeker
	remains int
}

func (l *loop) Stream(samples []float64) (n int, ok bool) {
	if l.remains == 0 || l.s.Err() != nil {
		return 0, false
	}
	for len(samples) > 0 {
		sn, sok := l.s.Stream(samples)
		if !sok {
			if l.remains > 0 {
				l.remains--
			}
			if l.remains == 0 {
				break
			}
			if err := l.s.Seek(0); err != nil {
				l.remains = 0
				break
			}
			continue
		}
		samples = samples[sn:]
		n += sn
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

func (l *loop) Err() error {
	return l.s.Err()
}

// Seq takes zero or more Streamers and returns a Streamer which streams them one by one without pauses.
//
// Seq does not propagate errors from the Streamers.
func Seq(s ...Streamer) Streamer {
	i := 0
	return StreamerFunc(func(samples []float64) (n int, ok bool) {
		for i < len(s) && len(samples) > 0 {
			sn, sok := s[i].Stream(samples)
			samples = samples[sn:]
			n, ok = n+sn, ok || sok
			if !sok {
				i++
			}
		}
		return n, ok
	})
}
