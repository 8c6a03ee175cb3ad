//go:build linux

package sched

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPID = 4242

	// A full stat line with state R and processor 3.
	testStat = "4242 (worker) R 1 4242 4242 0 -1 4194304 120 0 3 0 150 60 0 0 " +
		"20 0 1 0 8000 104857600 500 18446744073709551615 1 1 0 0 0 0 0 0 0 0 " +
		"0 0 17 3 0 0 0 0 0 0 0 0 0 0 0 0\n"

	testSchedstat = "123456789 5000 42\n"

	testStatus = "Name:\tworker\n" +
		"State:\tR (running)\n" +
		"voluntary_ctxt_switches:\t7\n" +
		"nonvoluntary_ctxt_switches:\t11\n"
)

// fakeProcTree builds a synthetic procfs mount with a single process.
func fakeProcTree(t *testing.T) string {
	t.Helper()

	mount := t.TempDir()
	dir := filepath.Join(mount, strconv.Itoa(testPID))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(testStat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schedstat"), []byte(testSchedstat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(testStatus), 0o644))
	return mount
}

func TestSource_Read(t *testing.T) {
	src, err := NewSourceAt(fakeProcTree(t))
	require.NoError(t, err)

	snap, err := src.Read(testPID)
	require.NoError(t, err)

	assert.Equal(t, "R", snap.State)
	assert.Equal(t, 3, snap.LastCPU)
	assert.Equal(t, uint64(123456789), snap.RuntimeNS)
	assert.Equal(t, uint64(7), snap.VoluntarySwitches)
	assert.Equal(t, uint64(11), snap.NonvoluntarySwitches)
}

func TestSource_Read_NotFound(t *testing.T) {
	src, err := NewSourceAt(fakeProcTree(t))
	require.NoError(t, err)

	_, err = src.Read(99999999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProcessNotFound))
}

func TestSource_Read_Self(t *testing.T) {
	src, err := NewSource()
	require.NoError(t, err)

	snap, err := src.Read(os.Getpid())
	require.NoError(t, err)

	assert.NotEmpty(t, snap.State)
	assert.GreaterOrEqual(t, snap.LastCPU, 0)
	assert.Greater(t, snap.RuntimeNS, uint64(0))
}
