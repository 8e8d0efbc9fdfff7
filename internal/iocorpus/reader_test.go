package iocorpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guittarj/TraitsTransplants/internal/iocorpus"
)

func writeRuns(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim_d5_m0.1_r1.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadRuns(t *testing.T) {
	path := writeRuns(t,
		"turfID,year,m,d,s1,s2\n"+
			"t1,2011,0.1,5,2,0\n"+
			"t1,2012,0.1,5,0,3.5\n")

	runs, err := iocorpus.ReadRuns(path, []string{"s1", "s2"}, 3)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "t1", runs[0].TurfID)
	assert.Equal(t, 2011, runs[0].Year)
	assert.InDelta(t, 0.1, runs[0].M, 1e-12)
	assert.Equal(t, 5, runs[0].D)
	assert.Equal(t, []float64{2, 0}, runs[0].Abund)
	assert.Equal(t, []float64{0, 3.5}, runs[1].Abund)
}

func TestReadRunsSpeciesOrder(t *testing.T) {
	// Species columns may appear in any order; abundances are realigned to
	// the field universe.
	path := writeRuns(t,
		"turfID,year,m,d,s2,s1\n"+
			"t1,2011,0.1,5,3.5,2\n")

	runs, err := iocorpus.ReadRuns(path, []string{"s1", "s2"}, 3)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []float64{2, 3.5}, runs[0].Abund)
}

func TestReadRunsRoundsM(t *testing.T) {
	path := writeRuns(t,
		"turfID,year,m,d,s1\n"+
			"t1,2011,0.100049,5,1\n")

	runs, err := iocorpus.ReadRuns(path, []string{"s1"}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, runs[0].M, 1e-12)
}

func TestReadRunsErrors(t *testing.T) {
	tests := []struct {
		msg     string
		content string
	}{
		{"empty file", ""},
		{"wrong header", "plot,year,m,d,s1\nt1,2011,0.1,5,1\n"},
		{"missing species", "turfID,year,m,d,s1\nt1,2011,0.1,5,1\n"},
		{"extra species", "turfID,year,m,d,s1,s2,s3\nt1,2011,0.1,5,1,2,3\n"},
		{"duplicate species", "turfID,year,m,d,s1,s1\nt1,2011,0.1,5,1,2\n"},
		{"bad year", "turfID,year,m,d,s1,s2\nt1,now,0.1,5,1,2\n"},
		{"bad m", "turfID,year,m,d,s1,s2\nt1,2011,low,5,1,2\n"},
		{"bad abundance", "turfID,year,m,d,s1,s2\nt1,2011,0.1,5,one,2\n"},
		{"negative abundance", "turfID,year,m,d,s1,s2\nt1,2011,0.1,5,-1,2\n"},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			path := writeRuns(t, v.content)
			_, err := iocorpus.ReadRuns(path, []string{"s1", "s2"}, 3)
			assert.Error(t, err)
		})
	}
}
