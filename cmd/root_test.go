package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"collect", "schedule", "serve", "migrate", "formulas", "ranking", "export", "status"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "market-history", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCollectCommand_Flags(t *testing.T) {
	flag := collectCmd.Flags().Lookup("label")
	require.NotNil(t, flag, "collect command should have --label flag")
	assert.Equal(t, "manual", flag.DefValue)
}

func TestScheduleCommand_Flags(t *testing.T) {
	flag := scheduleCmd.Flags().Lookup("cron")
	require.NotNil(t, flag, "schedule command should have --cron flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	collect := serveCmd.Flags().Lookup("collect")
	require.NotNil(t, collect, "serve command should have --collect flag")
	assert.Equal(t, "false", collect.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	window := exportCmd.Flags().Lookup("window")
	require.NotNil(t, window)
	assert.Equal(t, "24h", window.DefValue)

	out := exportCmd.Flags().Lookup("out")
	require.NotNil(t, out)
	assert.Equal(t, "market-history.xlsx", out.DefValue)
}

func TestFormulasCommand_Flags(t *testing.T) {
	require.NotNil(t, formulasCmd.Flags().Lookup("file"))
}

func TestStatusCommand_Flags(t *testing.T) {
	flag := statusCmd.Flags().Lookup("lookback")
	require.NotNil(t, flag)
	assert.Equal(t, "24", flag.DefValue)
}
