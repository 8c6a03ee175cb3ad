//go:build linux

package rapl

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMSRFile lays out register values at their offsets, the same way the
// msr device node exposes them.
func fakeMSRFile(t *testing.T, regs map[uint32]uint64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "msr")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 8)
	for reg, val := range regs {
		binary.LittleEndian.PutUint64(buf, val)
		_, err = f.WriteAt(buf, int64(reg))
		require.NoError(t, err)
	}
	return path
}

func TestReaderAt_ReadRegisters(t *testing.T) {
	path := fakeMSRFile(t, map[uint32]uint64{
		MSRPowerUnit:       uint64(14) << 8,
		MSRPkgEnergyStatus: 0xCAFE_0000_0000_2710,
	})

	r, err := NewReaderAt(path, 0, nil)
	require.NoError(t, err)
	defer r.Close()

	raw, err := r.Read(MSRPkgEnergyStatus)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xCAFE_0000_0000_2710), raw)
	assert.Equal(t, uint32(0x2710), Counter(raw))

	unit, err := EnergyUnit(r)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16384, unit, 1e-15)
}

func TestReaderAt_ZeroIsAValidReading(t *testing.T) {
	path := fakeMSRFile(t, map[uint32]uint64{
		MSRDRAMEnergyStatus: 0,
		// pad the file past the register so the read is not short
		MSRPlatformEnergyStatus: 1,
	})

	r, err := NewReaderAt(path, 0, nil)
	require.NoError(t, err)
	defer r.Close()

	raw, err := r.Read(MSRDRAMEnergyStatus)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), raw)
}

func TestReaderAt_UnexposedRegisterUnavailable(t *testing.T) {
	// File ends before the register offset; the counter does not exist.
	path := fakeMSRFile(t, map[uint32]uint64{MSRPowerUnit: uint64(14) << 8})

	r, err := NewReaderAt(path, 0, nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read(MSRPlatformEnergyStatus)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestReaderAt_MissingDevice(t *testing.T) {
	_, err := NewReaderAt(filepath.Join(t.TempDir(), "absent"), 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
