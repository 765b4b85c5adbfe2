package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAutoContralateral(t *testing.T) {
	raw := []string{
		"EEG F3-M2", "EEG F4-M1", "EEG C3-M2", "EEG C4-M1",
		"EEG O1-M2", "EEG O2-M1",
	}
	m := ResolveAuto(raw)

	assert.Equal(t, "EEG F3-M2", m[F3])
	assert.Equal(t, "EEG F4-M1", m[F4])
	assert.Equal(t, "EEG C3-M2", m[C3])
	assert.Equal(t, "EEG C4-M1", m[C4])
	assert.Equal(t, "EEG O1-M2", m[O1])
	assert.Equal(t, "EEG O2-M1", m[O2])
	// Explicit references mean no inferred default reference.
	assert.NotContains(t, m, M2)
}

func TestResolveAutoA1A2References(t *testing.T) {
	m := ResolveAuto([]string{"C3-A2", "C4-A1"})
	assert.Equal(t, "C3-A2", m[C3])
	assert.Equal(t, "C4-A1", m[C4])
}

func TestResolveAutoBareWithDefaultReference(t *testing.T) {
	// Bare position matches record the first available generic reference
	// under the default reference role.
	m := ResolveAuto([]string{"F3", "A2", "M1"})

	assert.Equal(t, "F3", m[F3])
	assert.Equal(t, "A2", m[M2], "A2 is scanned before M1 and wins")
}

func TestResolveAutoNoDefaultReferenceAfterExplicit(t *testing.T) {
	// An explicit reference on any earlier position suppresses default
	// reference inference for later bare matches.
	m := ResolveAuto([]string{"F3-M2", "C4", "M1"})

	assert.Equal(t, "F3-M2", m[F3])
	assert.Equal(t, "C4", m[C4])
	assert.NotContains(t, m, M2)
}

func TestResolveAutoDiscardsLegChannels(t *testing.T) {
	m := ResolveAuto([]string{"LLEG-RLEG", "EEG F4-M1"})

	assert.Equal(t, "EEG F4-M1", m[F4])
	for _, name := range m {
		assert.NotContains(t, name, "LEG")
	}
}

func TestResolveAutoRejectsSPO2(t *testing.T) {
	// "O2" must never land on the oxygen-saturation channel.
	m := ResolveAuto([]string{"SpO2", "O2-M1"})
	assert.Equal(t, "O2-M1", m[O2])

	m = ResolveAuto([]string{"SpO2"})
	assert.NotContains(t, m, O2)
}

func TestResolveAutoEOG(t *testing.T) {
	tests := []struct {
		name   string
		raw    []string
		wantE1 string
		wantE2 string
	}{
		{"referenced names", []string{"E1-M2", "E2-M1"}, "E1-M2", "E2-M1"},
		{"LOC and ROC", []string{"LOC", "ROC"}, "LOC", "ROC"},
		{"numbered EOG", []string{"EOG1", "EOG2"}, "EOG1", "EOG2"},
		{"sided EOG", []string{"EOGL", "EOGR"}, "EOGL", "EOGR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ResolveAuto(tt.raw)
			assert.Equal(t, tt.wantE1, m[E1])
			assert.Equal(t, tt.wantE2, m[E2])
		})
	}
}

func TestResolveAutoEMG(t *testing.T) {
	t.Run("separate chin channels", func(t *testing.T) {
		m := ResolveAuto([]string{"Chin1", "Chin2"})
		assert.Equal(t, "Chin1", m[EMG])
		assert.Equal(t, "Chin2", m[EMGref])
	})

	t.Run("bipolar name needs no reference", func(t *testing.T) {
		m := ResolveAuto([]string{"Chin1-Chin2"})
		assert.Equal(t, "Chin1-Chin2", m[EMG])
		assert.NotContains(t, m, EMGref)
	})

	t.Run("generic EMG is the last resort", func(t *testing.T) {
		m := ResolveAuto([]string{"EMG", "Chin"})
		assert.Equal(t, "Chin", m[EMG], "chin candidates outrank generic EMG")
	})

	t.Run("reference candidate landing on the EMG channel is rejected", func(t *testing.T) {
		// Every reference candidate's first match is the EMG channel
		// itself, so no EMGref resolves even though a second name would
		// match too.
		m := ResolveAuto([]string{"Chin2", "Chin2 ref"})
		assert.Equal(t, "Chin2", m[EMG])
		assert.NotContains(t, m, EMGref)
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EEG F4-M1", "EEGF4M1"},
		{"eog(l)", "EOGL"},
		{"Chin 1", "CHIN1"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
