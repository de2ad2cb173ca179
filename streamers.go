package pim

// Silence returns a Streamer which streams n samples of silence. If n is negative, silence is
// streamed forever.
func Silence(n int) Streamer {
	return StreamerFunc(func(samples []float64) (m int, ok bool) {
		if n == 0 {
			return 0, false
		}
		for i := range samples {
			if n == 0 {
				break
			}
			samples[i] = 0
			m++
			if n > 0 {
				n--
			}
		}
		return m, true
	})
}
