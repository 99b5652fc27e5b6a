package capture

// DefaultSampleInterval is the spacing between sampled timestamps in seconds.
const DefaultSampleInterval = 1.0

// Timestamps returns 0, interval, 2*interval, ... strictly below duration.
// A non-positive duration or interval yields no timestamps.
func Timestamps(duration, interval float64) []float64 {
	if duration <= 0 || interval <= 0 {
		return nil
	}

	var out []float64
	for i := 0; ; i++ {
		t := float64(i) * interval
		if t >= duration {
			break
		}
		out = append(out, t)
	}
	return out
}
