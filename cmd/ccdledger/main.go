// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// ccdledger drives the signing application on an attached hardware device:
// it retrieves public keys, verifies addresses on-screen and signs
// transactions read from JSON files.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ccd-labs/ccdledger/bip32"
	"github.com/ccd-labs/ccdledger/ledger"
)

const usage = `usage: ccdledger <command> [flags]

commands:
  pubkey      print the public key for --path
  verify      verify an address on-device for --identity/--cred-counter
  sign        sign the transaction in --file over --path
  export      export the secret selected by --export-kind for --path
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	command := os.Args[1]

	fs := flagSet()
	config, err := getConfig(fs, os.Args[2:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "couldn't parse flags: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(command, config, log); err != nil {
		log.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

func run(command string, config Config, log *zap.Logger) error {
	path, err := bip32.ParsePath(config.Path)
	if err != nil {
		return err
	}

	device, err := ledger.Connect(ledger.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		_ = device.Close()
	}()
	log.Debug("device connected")

	switch command {
	case "pubkey":
		key, err := device.GetPublicKey(path, config.Confirm)
		if err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(key))
		return nil

	case "verify":
		if err := device.VerifyAddress(config.Identity, config.CredCounter); err != nil {
			log.Debug("address verification rejected", zap.Error(err))
			fmt.Println("failed")
			return nil
		}
		fmt.Println("ok")
		return nil

	case "sign":
		if config.File == "" {
			return errors.New("sign needs --file")
		}
		raw, err := os.ReadFile(config.File)
		if err != nil {
			return err
		}
		header, payload, err := parseTransaction(raw)
		if err != nil {
			return err
		}
		log.Info("signing transaction",
			zap.Stringer("kind", payload.Kind()),
			zap.Stringer("path", path),
		)
		sig, err := device.Sign(path, header, payload)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil

	case "export":
		key, err := device.ExportPrivateKey(path, ledger.ExportKind(config.ExportKind))
		if err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(key))
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func newLogger(levelStr string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(levelStr); err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core), nil
}
