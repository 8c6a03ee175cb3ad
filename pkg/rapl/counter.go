package rapl

// counterBits is the width of the RAPL energy status counters. The MSR
// itself is 64 bits wide but only the low 32 carry the counter; the value
// wraps at 2^32.
const counterBits = 32

// counterModulus is the wraparound modulus of the energy counters.
const counterModulus = uint64(1) << counterBits

// Counter extracts the energy counter from a raw MSR value.
func Counter(raw uint64) uint32 {
	return uint32(raw & (counterModulus - 1))
}

// CounterDelta returns cur-prev corrected for wraparound of the
// fixed-width counter. A current reading below the previous one means the
// counter overflowed, not that energy ran backwards.
func CounterDelta(cur, prev uint32) uint64 {
	if cur >= prev {
		return uint64(cur) - uint64(prev)
	}
	return counterModulus - uint64(prev) + uint64(cur)
}

// ParseEnergyUnit derives the calibration scalar, in Joules per raw
// counter increment, from a raw MSR_RAPL_POWER_UNIT value. The energy
// unit is encoded in bits 12:8 as a log2 divisor: unit = 1 / 2^bits.
func ParseEnergyUnit(raw uint64) float64 {
	bits := (raw >> 8) & 0x1F
	return 1.0 / float64(uint64(1)<<bits)
}
