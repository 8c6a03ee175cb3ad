//go:build linux

package rapl

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultDevicePath is the msr driver's per-CPU device path template.
const DefaultDevicePath = "/dev/cpu/%d/msr"

// Reader reads 64-bit model-specific registers of a fixed logical CPU.
type Reader interface {
	// Read returns the raw 64-bit value at the given register offset.
	// Registers the hardware does not expose, or that the caller may not
	// read, yield an error wrapping ErrUnavailable.
	Read(register uint32) (uint64, error)
	Close() error
}

// msrReader reads registers through the msr device node of one CPU.
type msrReader struct {
	cpu  int
	file *os.File
	log  *slog.Logger
}

// NewMSRReader opens the msr device of the given logical CPU.
func NewMSRReader(cpu int, logger *slog.Logger) (Reader, error) {
	return NewReaderAt(fmt.Sprintf(DefaultDevicePath, cpu), cpu, logger)
}

// NewReaderAt opens an msr device at an explicit path. Mainly useful for
// tests; production callers use NewMSRReader.
func NewReaderAt(path string, cpu int, logger *slog.Logger) (Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, fmt.Errorf("open %s: %w", path, ErrUnavailable)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &msrReader{
		cpu:  cpu,
		file: f,
		log:  logger.With("service", "msr-reader", "cpu", cpu),
	}, nil
}

func (m *msrReader) Read(register uint32) (uint64, error) {
	buf := make([]byte, 8)
	n, err := unix.Pread(int(m.file.Fd()), buf, int64(register))
	if err != nil {
		m.log.Debug("msr read failed", "register", fmt.Sprintf("0x%x", register), "error", err)
		return 0, fmt.Errorf("read msr 0x%x: %w", register, ErrUnavailable)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("read msr 0x%x: short read of %d bytes: %w", register, n, ErrUnavailable)
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (m *msrReader) Close() error {
	return m.file.Close()
}

// EnergyUnit reads MSR_RAPL_POWER_UNIT through r and returns the
// calibration scalar in Joules per raw counter increment.
func EnergyUnit(r Reader) (float64, error) {
	raw, err := r.Read(MSRPowerUnit)
	if err != nil {
		return 0, fmt.Errorf("energy unit: %w", err)
	}
	return ParseEnergyUnit(raw), nil
}
