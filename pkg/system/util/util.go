package util

// DeltaU64 returns now-prev for monotonic counters, guarding against a
// reset making the counter run backwards.
func DeltaU64(now, prev uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	// counter reset or prev unset
	return 0
}

// SafeDiv divides n by d, returning 0 for a (near-)zero divisor.
func SafeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}
