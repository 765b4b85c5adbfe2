package psg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRejectsNonEDF(t *testing.T) {
	_, err := Load("subject-001.mat")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedContainer)

	_, err = Load("subject-001.h5")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedContainer)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.edf"))
	require.Error(t, err)
}

func TestLoadGarbageFile(t *testing.T) {
	// A file that is not an EDF container must fail cleanly, never panic
	// and never yield a partial recording.
	path := filepath.Join(t.TempDir(), "garbage.edf")
	require.NoError(t, os.WriteFile(path, []byte("not an edf header"), 0644))

	rec, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, rec)
}

func TestRecordingAccessors(t *testing.T) {
	start := time.Date(2024, 3, 1, 22, 15, 0, 0, time.Local)
	rec := NewRecording("night1.edf", start)
	rec.AddChannel("EEG F4-M1", 256, make([]float64, 256*30))
	rec.AddChannel("EOG(L)", 128, make([]float64, 128*30))

	assert.Equal(t, []string{"EEG F4-M1", "EOG(L)"}, rec.Names())
	assert.Equal(t, start, rec.StartTime)

	rate, ok := rec.SampleRate("EOG(L)")
	require.True(t, ok)
	assert.Equal(t, 128, rate)

	data, ok := rec.Data("EEG F4-M1")
	require.True(t, ok)
	assert.Len(t, data, 256*30)

	_, ok = rec.SampleRate("EMG chin")
	assert.False(t, ok)
	_, ok = rec.Data("EMG chin")
	assert.False(t, ok)
}
