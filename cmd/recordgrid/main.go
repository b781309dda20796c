// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// recordgrid is an interactive terminal grid for editing a sequence of
// person records (name, age, address) stored in a local file.
//
// Every saved cell, added row and confirmed delete is written back to
// the file atomically. With --watch the grid also follows edits other
// processes make to the file. With --export the records are converted
// to another file (JSONL or CBOR, chosen by extension) and no terminal
// UI is started.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/recordgrid/lib/cli"
	"github.com/bureau-foundation/recordgrid/lib/config"
	"github.com/bureau-foundation/recordgrid/lib/gridui"
	"github.com/bureau-foundation/recordgrid/lib/record"
	"github.com/bureau-foundation/recordgrid/lib/recordfile"
	"github.com/bureau-foundation/recordgrid/lib/tui"
	"github.com/bureau-foundation/recordgrid/lib/version"
)

func main() {
	os.Exit(cli.Exit(os.Stderr, run(os.Args[1:], os.Stdout, os.Stderr)))
}

// options holds the parsed command line.
type options struct {
	filePath   string
	formatName string
	configPath string
	keyPolicy  string
	watch      bool
	logOutput  string
	exportPath string
}

func run(args []string, stdout, stderr io.Writer) error {
	var flags options

	flagSet := pflag.NewFlagSet("recordgrid", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&flags.filePath, "file", "f", "", "record file to edit (default: records.jsonl, or data.path from the config)")
	flagSet.StringVar(&flags.formatName, "format", "", "record file format: jsonl or cbor (default: by file extension)")
	flagSet.StringVar(&flags.configPath, "config", "", "config file (default: $"+config.EnvironmentVariable+" when set)")
	flagSet.StringVar(&flags.keyPolicy, "keys", "", "key policy for new records: counter or ulid")
	flagSet.BoolVar(&flags.watch, "watch", false, "reload the grid when another process rewrites the file")
	flagSet.StringVar(&flags.logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.StringVar(&flags.exportPath, "export", "", "write the records to this file and exit (format by extension)")
	flagSet.Bool("version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return cli.Validation("%v", err).WithHint("Run 'recordgrid --help' for usage.")
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}
	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		fmt.Fprintf(stdout, "recordgrid %s\n", version.Full())
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return cli.Validation("unexpected argument: %s", rest[0]).
			WithHint("Pass the record file with --file.")
	}

	cfg, err := loadConfig(flags, flagSet)
	if err != nil {
		return err
	}

	if flags.exportPath != "" {
		return runExport(cfg, flags.exportPath)
	}
	return runGrid(cfg)
}

// loadConfig reads the config file named by --config or the
// environment, or starts from defaults, then applies the flags that
// were given explicitly.
func loadConfig(flags options, flagSet *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case flags.configPath != "":
		cfg, err = config.LoadFile(flags.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, cli.Validation("loading config: %w", err)
	}

	if flagSet.Changed("file") {
		cfg.Data.Path = flags.filePath
		// A format set in the config describes the config's file.
		if !flagSet.Changed("format") {
			cfg.Data.Format = ""
		}
	}
	if flagSet.Changed("format") {
		cfg.Data.Format = flags.formatName
	}
	if flagSet.Changed("keys") {
		cfg.Keys.Policy = flags.keyPolicy
	}
	if flagSet.Changed("watch") {
		cfg.Data.Watch = flags.watch
	}
	if flagSet.Changed("log-output") {
		cfg.Log.Output = flags.logOutput
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runExport converts the record file to exportPath without starting
// the terminal UI.
func runExport(cfg *config.Config, exportPath string) error {
	logger := cli.NewCommandLogger(cfg.LogLevel())

	_, sequence, err := recordfile.Open(cfg.Data.Path, cfg.Data.Format, logger)
	if err != nil {
		return cli.Validation("cannot load records from %s: %w", cfg.Data.Path, err)
	}
	format, err := recordfile.FormatForPath(exportPath)
	if err != nil {
		return cli.Validation("cannot export to %s: %w", exportPath, err)
	}
	if err := recordfile.SaveFile(exportPath, format, sequence); err != nil {
		return cli.Internal("exporting records: %w", err)
	}

	logger.Info("records exported",
		"from", cfg.Data.Path,
		"to", exportPath,
		"format", format,
		"records", len(sequence),
	)
	return nil
}

// runGrid runs the terminal UI over the record file.
//
// Background logging (persistence failures, watcher errors) goes
// through a TUILogHandler that shows warnings and errors in the status
// bar instead of writing to stderr, which would corrupt the alt screen.
// --log-output additionally captures every record at the configured
// level as JSON.
func runGrid(cfg *config.Config) error {
	schema, err := cfg.Schema()
	if err != nil {
		return cli.Validation("invalid column configuration: %w", err)
	}

	tuiHandler := gridui.NewTUILogHandler(slog.LevelWarn)
	var logger *slog.Logger
	if cfg.Log.Output != "" {
		fileHandler, fileCloser, fileErr := openFileLogHandler(cfg.Log.Output, cfg.LogLevel())
		if fileErr != nil {
			return cli.Validation("cannot open log file %s: %w", cfg.Log.Output, fileErr)
		}
		defer fileCloser()
		logger = slog.New(gridui.FanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	file, initial, err := recordfile.Open(cfg.Data.Path, cfg.Data.Format, logger.With("component", "recordfile"))
	if err != nil {
		return cli.Validation("cannot load records from %s: %w", cfg.Data.Path, err).
			WithHint("Check that the file contains valid records, or pass --file to edit another one.")
	}

	generator, ok := record.NewKeyGenerator(record.KeyPolicy(cfg.Keys.Policy), record.NextCounterStart(initial))
	if !ok {
		return cli.Validation("unknown key policy %q", cfg.Keys.Policy)
	}

	store := record.NewStore(initial, file, logger.With("component", "store"))

	if cfg.Data.Watch {
		stop, watchErr := file.Watch(initial, func(sequence record.Sequence) {
			store.Load(sequence)
		}, recordfile.WatchOptions{Logger: logger.With("component", "watch")})
		if watchErr != nil {
			return cli.Internal("watching %s: %w", cfg.Data.Path, watchErr)
		}
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := gridui.NewModel(initial, store.Replace,
		gridui.WithUpdates(store.Subscribe()),
		gridui.WithSchema(schema),
		gridui.WithKeyGenerator(generator),
		gridui.WithTheme(themeForTerminal()),
		gridui.WithTitle(filepath.Base(cfg.Data.Path)),
		gridui.WithLogger(logger.With("component", "grid")),
		gridui.WithContext(ctx),
	)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

func printHelp(output io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(output, `recordgrid — edit person records in an interactive terminal grid.

Loads records from records.jsonl in the current directory (or the file
given with --file, or data.path in the config) and shows them as a
grid. Enter edits a cell; leaving the cell saves it once it validates.
A missing file starts an empty grid and is created on the first save.

Configuration comes from --config, or the file named by $%s.
Flags given on the command line override the config.

Usage:
  recordgrid [flags]

Examples:
  # Edit records.jsonl in the current directory
  recordgrid

  # Edit a CBOR snapshot with ULID keys for new records
  recordgrid --file people.cbor --keys ulid

  # Follow changes another process makes to the file
  recordgrid --file shared.jsonl --watch --log-output /tmp/recordgrid.log

  # Convert a JSONL file to CBOR without opening the grid
  recordgrid --file records.jsonl --export records.cbor

Flags:
`, config.EnvironmentVariable)
	flagSet.SetOutput(output)
	flagSet.PrintDefaults()
}

// themeForTerminal picks the theme for the terminal's color support.
func themeForTerminal() tui.Theme {
	return tui.ThemeForProfile(termenv.EnvColorProfile())
}
