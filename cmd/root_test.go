/*
Copyright © 2025 John Guittar <guittarj@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_Exists verifies the root command is wired up.
func TestRootCmd_Exists(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "traitsim", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
}

// TestRootCmd_ShortVersionFlag verifies -V prints version and build.
func TestRootCmd_ShortVersionFlag(t *testing.T) {
	rootCmd.Version = "version: v1.2.3\nbuild:   abc123"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"-V"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "abc123")
}

// TestRootCmd_HelpText verifies help mentions the pipeline's purpose.
func TestRootCmd_HelpText(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--help"})

	require.NoError(t, rootCmd.Execute())
	help := buf.String()
	assert.Contains(t, help, "traitsim")
	assert.Contains(t, help, "observed")
	assert.Contains(t, help, "summarize")
}

// TestGetObservedCmd_Flags verifies the observed command declares its
// table flags.
func TestGetObservedCmd_Flags(t *testing.T) {
	cmd := getObservedCmd()
	assert.Equal(t, "observed", cmd.Use)

	for _, name := range []string{"cover", "meta", "trait-table", "out", "traits"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

// TestGetSummarizeCmd_Flags verifies the summarize command declares the
// corpus, checkpoint and concurrency flags.
func TestGetSummarizeCmd_Flags(t *testing.T) {
	cmd := getSummarizeCmd()
	assert.Equal(t, "summarize", cmd.Use)
	assert.Contains(t, cmd.Aliases, "agg")

	for _, name := range []string{
		"cover", "meta", "trait-table", "out", "traits",
		"targets", "corpus", "checkpoint", "jobs", "flush-every",
		"no-checkpoint", "resume",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}

	jobs := cmd.Flags().Lookup("jobs")
	require.NotNil(t, jobs)
	assert.Equal(t, "j", jobs.Shorthand)
}
