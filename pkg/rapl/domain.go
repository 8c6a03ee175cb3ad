package rapl

// MSR register offsets for the Intel RAPL interface.
const (
	// MSRPowerUnit holds the calibration scaling factors; the energy
	// unit lives in bits 12:8.
	MSRPowerUnit uint32 = 0x606

	// Cumulative energy status counters (32-bit, wrap at 2^32).
	MSRPkgEnergyStatus      uint32 = 0x611
	MSRPP0EnergyStatus      uint32 = 0x639
	MSRPP1EnergyStatus      uint32 = 0x641
	MSRDRAMEnergyStatus     uint32 = 0x619
	MSRPlatformEnergyStatus uint32 = 0x64D
)

// Domain identifies one independently metered power rail.
type Domain int

const (
	Package Domain = iota
	CpuCores
	Uncore
	Dram
	PlatformTotal
)

// _domains lists every known domain in the order they are sampled
// and reported. Not every domain exists on every CPU; tracking of a
// missing one is dropped after its baseline read fails.
var _domains = [...]struct {
	label    string
	register uint32
}{
	Package:       {"Package", MSRPkgEnergyStatus},
	CpuCores:      {"CPU Cores", MSRPP0EnergyStatus},
	Uncore:        {"Uncore", MSRPP1EnergyStatus},
	Dram:          {"DRAM", MSRDRAMEnergyStatus},
	PlatformTotal: {"Platform", MSRPlatformEnergyStatus},
}

// Domains returns all known domains in their fixed sampling order.
func Domains() []Domain {
	out := make([]Domain, len(_domains))
	for i := range _domains {
		out[i] = Domain(i)
	}
	return out
}

// Label returns the display label of the domain.
func (d Domain) Label() string {
	if int(d) < 0 || int(d) >= len(_domains) {
		return "unknown"
	}
	return _domains[d].label
}

// Register returns the MSR offset of the domain's energy counter.
func (d Domain) Register() uint32 {
	if int(d) < 0 || int(d) >= len(_domains) {
		return 0
	}
	return _domains[d].register
}

func (d Domain) String() string { return d.Label() }
