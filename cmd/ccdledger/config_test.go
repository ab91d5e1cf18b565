// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	require := require.New(t)

	config, err := getConfig(flagSet(), nil)
	require.NoError(err)
	require.Equal("44'/919'/0'/0/0", config.Path)
	require.Equal("info", config.LogLevel)
	require.False(config.Confirm)
	require.Empty(config.File)
}

func TestGetConfigFlags(t *testing.T) {
	require := require.New(t)

	config, err := getConfig(flagSet(), []string{
		"--path", "44'/919'/0'/0/3",
		"--log-level", "debug",
		"--confirm",
		"--file", "tx.json",
		"--identity", "4",
		"--cred-counter", "2",
		"--export-kind", "1",
	})
	require.NoError(err)
	require.Equal("44'/919'/0'/0/3", config.Path)
	require.Equal("debug", config.LogLevel)
	require.True(config.Confirm)
	require.Equal("tx.json", config.File)
	require.Equal(uint32(4), config.Identity)
	require.Equal(uint32(2), config.CredCounter)
	require.Equal(uint8(1), config.ExportKind)
}

func TestGetConfigEnvironment(t *testing.T) {
	require := require.New(t)

	t.Setenv("CCDLEDGER_LOG_LEVEL", "warn")
	config, err := getConfig(flagSet(), nil)
	require.NoError(err)
	require.Equal("warn", config.LogLevel)
}

func TestGetConfigInvalidExportKind(t *testing.T) {
	require := require.New(t)

	_, err := getConfig(flagSet(), []string{"--export-kind", "2"})
	require.Error(err)
}
