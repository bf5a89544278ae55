package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "relaybot dev\n", out.String())
}

func TestRootFlags(t *testing.T) {
	cmd := rootCmd()

	cfgFlag := cmd.Flags().Lookup("config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "./config.yaml", cfgFlag.DefValue)

	envFlag := cmd.Flags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)
}

func TestRun_MissingToken(t *testing.T) {
	for _, name := range []string{"TELEGRAM_BOT_TOKEN", "BOT_TOKEN"} {
		t.Setenv(name, "")
	}

	cmd := rootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir() + "/none.yaml", "--env-file", t.TempDir() + "/none.env"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}
