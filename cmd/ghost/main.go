package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sokinpui/ghost/cli"
	"github.com/sokinpui/ghost/ghost"
	"github.com/sokinpui/ghost/internal/config"
	"github.com/sokinpui/ghost/internal/prompt"
	"github.com/sokinpui/ghost/internal/source"
	"github.com/sokinpui/ghost/internal/tui"
	"github.com/sokinpui/ghost/internal/ui"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		ui.Error("Error: %v", err)
		var detailed *ghost.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	flags, err := cli.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if flags.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var policyDirs []string
	if exe, err := os.Executable(); err == nil {
		policyDirs = append(policyDirs, filepath.Dir(exe))
	}

	cfg, err := config.Load(ctx, config.LoadOptions{
		EnvFile:    flags.EnvFile,
		Dir:        flags.Dir,
		PolicyDirs: policyDirs,
		Override:   flags.Apply,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.History == 0 {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	var opts []ghost.Option
	if source.IsPiped(os.Stdin) {
		// stdin carries the directive; answers come from the terminal.
		if tty, err := os.Open("/dev/tty"); err == nil {
			defer tty.Close()
			opts = append(opts, ghost.WithPrompter(prompt.NewTerminal(tty, ui.Out)))
		} else {
			opts = append(opts, ghost.WithPrompter(prompt.NewTerminal(eofReader{}, ui.Out)))
		}
	}

	app, err := ghost.New(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	summary, err := app.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, tui.RenderSummary(summary))
	return nil
}

// eofReader answers every prompt negatively.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
