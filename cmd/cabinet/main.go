package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ananthvk/filecabinet"
	"github.com/ananthvk/filecabinet/internal/config"
	"github.com/ananthvk/filecabinet/internal/console"
	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/validation"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "cabinet: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	rules, err := validation.LoadRules(fs, cfg.RulesFile)
	if err != nil {
		return err
	}
	validator, err := validation.New(cfg.ValidationRules, rules)
	if err != nil {
		return err
	}
	opts := filecabinet.Options{Validator: validator, Encoding: record.TextEncoding(cfg.Encoding)}

	var service filecabinet.Service
	if cfg.Storage == config.StorageFile {
		store, err := filecabinet.OpenOrCreate(fs, cfg.DataDir, opts)
		if err != nil {
			return fmt.Errorf("cannot open record store at %s: %w", cfg.DataDir, err)
		}
		service = store
	} else {
		service = filecabinet.NewMemoryStore(opts)
	}

	if cfg.UseLogger {
		logFile, err := fs.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			service.Close()
			return err
		}
		defer logFile.Close()
		service = filecabinet.NewLogger(service, logFile)
	}
	if cfg.UseStopwatch {
		service = filecabinet.NewMeter(service, slog.Default())
	}
	defer func() {
		if err := service.Close(); err != nil {
			slog.Error("failed to close the record store", "error", err)
		}
	}()

	fmt.Printf("Application %s storage, using %s validation rules.\n", cfg.Storage, cfg.ValidationRules)
	fmt.Println("Enter your command, or enter 'help' to get help.")
	fmt.Println()
	app := console.New(service, validator, fs, os.Stdin, colorable.NewColorableStdout())
	return app.Run()
}
