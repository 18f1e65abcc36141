package stats

// ChangeRate is the percentage change between two samples. A move from
// zero counts as a full swing.
func ChangeRate(new, old float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}

	return (new - old) / old * 100
}
