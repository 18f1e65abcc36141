package stats

// Point is one sample of a derived time series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	// Complete reports whether a full window backs the value. The first
	// window-1 samples average only what is available.
	Complete bool `json:"complete"`
}

// RollingMean computes the trailing mean over the given window. Dates and
// values run in parallel and must be the same length.
func RollingMean(dates []string, values []float64, window int) []Point {
	if len(dates) != len(values) || len(values) == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}

	points := make([]Point, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= values[i-window]
		}
		points[i] = Point{
			Date:     dates[i],
			Value:    sum / float64(n),
			Complete: i+1 >= window,
		}
	}
	return points
}

// Deltas turns a cumulative series into day-over-day differences. The
// first element is kept as-is.
func Deltas(cumulative []float64) []float64 {
	if len(cumulative) == 0 {
		return nil
	}
	deltas := make([]float64, len(cumulative))
	deltas[0] = cumulative[0]
	for i := 1; i < len(cumulative); i++ {
		deltas[i] = cumulative[i] - cumulative[i-1]
	}
	return deltas
}

// RepairCumulative derives daily deltas from a cumulative series and
// clamps negative ones to zero. Source feeds occasionally revise totals
// downwards; the raw cumulative values are left to the caller untouched.
func RepairCumulative(cumulative []float64) []float64 {
	deltas := Deltas(cumulative)
	for i, d := range deltas {
		if d < 0 {
			deltas[i] = 0
		}
	}
	return deltas
}
