// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	pathKey        = "path"
	logLevelKey    = "log-level"
	confirmKey     = "confirm"
	fileKey        = "file"
	identityKey    = "identity"
	credCounterKey = "cred-counter"
	exportKindKey  = "export-kind"
)

// Config carries everything the CLI needs, resolved from flags and the
// CCDLEDGER_* environment.
type Config struct {
	Path        string
	LogLevel    string
	Confirm     bool
	File        string
	Identity    uint32
	CredCounter uint32
	ExportKind  uint8
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ccdledger", pflag.ContinueOnError)
	fs.String(pathKey, "44'/919'/0'/0/0", "key derivation path")
	fs.String(logLevelKey, "info", "log level: debug, info, warn, error")
	fs.Bool(confirmKey, false, "require on-device confirmation for key retrieval")
	fs.String(fileKey, "", "transaction JSON file to sign")
	fs.Uint32(identityKey, 0, "identity index for address verification")
	fs.Uint32(credCounterKey, 0, "credential counter for address verification")
	fs.Uint8(exportKindKey, 0, "secret to export: 0 = PRF key, 1 = IdCredSec")
	return fs
}

// getConfig parses [args] into a Config, letting CCDLEDGER_* environment
// variables fill anything not set on the command line.
func getConfig(fs *pflag.FlagSet, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix("ccdledger")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	config := Config{
		Path:        v.GetString(pathKey),
		LogLevel:    v.GetString(logLevelKey),
		Confirm:     v.GetBool(confirmKey),
		File:        v.GetString(fileKey),
		Identity:    v.GetUint32(identityKey),
		CredCounter: v.GetUint32(credCounterKey),
	}

	exportKind := v.GetUint(exportKindKey)
	if exportKind > 1 {
		return Config{}, fmt.Errorf("invalid export kind %d", exportKind)
	}
	config.ExportKind = uint8(exportKind)
	return config, nil
}
