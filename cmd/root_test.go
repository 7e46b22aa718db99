//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"migrate", "ingest", "benchmarks", "runs", "parse", "analytics", "config"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "estateai", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestIngestCommand_Flags(t *testing.T) {
	for _, name := range []string{"portal", "location", "type"} {
		flag := ingestCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "ingest command should have --%s flag", name)
	}
}

func TestBenchmarksBuildCommand_Flags(t *testing.T) {
	flag := benchmarksBuildCmd.Flags().Lookup("min-listings")
	require.NotNil(t, flag, "benchmarks build should have --min-listings flag")
	assert.Equal(t, "5", flag.DefValue)
}

func TestAnalyticsCommand_HasSubcommands(t *testing.T) {
	cmds := analyticsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"migrate", "seed", "capex", "refresh"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}
