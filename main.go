package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsonbench/internal/config"
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/logging"
	"github.com/mcncl/jsonbench/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Defaults to the nearest .jsonbench.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Lenient *bool            `help:"Accept comments and trailing commas in JSON input." short:"l"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Path      PathCmd      `cmd:"" help:"Print the JSON path at a cursor position."`
	Format    FormatCmd    `cmd:"" help:"Pretty-print or minify a JSON document."`
	Diff      DiffCmd      `cmd:"" help:"Compare two JSON documents."`
	Patch     PatchCmd     `cmd:"" help:"Create or apply JSON patches."`
	Design    DesignCmd    `cmd:"" help:"Work with designer structures."`
	Templates TemplatesCmd `cmd:"" help:"Manage saved templates."`
	Serve     ServeCmd     `cmd:"" help:"Run the HTTP API."`
}

// Context holds the runtime context
type Context struct {
	context.Context
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute parses args, runs the selected command and returns the exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	app, err := kong.New(&cli,
		kong.Name("jsonbench"),
		kong.Description("A workbench for JSON documents: paths, diffs, patches and a structure designer."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Vars{"version": "jsonbench version " + Version},
	)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	kctx, err := app.Parse(args)
	if exitCode >= 0 {
		// --help or --version already wrote their output
		return exitCode
	}
	if err != nil {
		// The usage was already shown by kong.UsageOnError()
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{Lenient: cli.Lenient, Debug: cli.Debug})
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(errors.NewConfigError("failed to load configuration", err)))
		return 1
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(errors.NewConfigError("invalid log level", err)))
		return 1
	}
	ctx = logging.Setup(ctx, stderr, level, cfg.Log.Color)
	logging.Ctx(ctx).Debug("Loaded configuration", "file", configPath, "command", kctx.Command())

	err = kctx.Run(&Context{Context: ctx, Config: cfg, Stdin: stdin, Stdout: stdout, Stderr: stderr})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}
	return 0
}

// readInput reads a document from path, or from stdin when path is empty
// or "-".
func readInput(c *Context, path string) (string, error) {
	if path != "" && path != "-" {
		data, err := parser.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	// A terminal on stdin means nothing was piped in
	if f, ok := c.Stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(c.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// writeOutput writes text to path, or to stdout when path is empty.
func writeOutput(c *Context, path, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if path != "" {
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		logging.Ctx(c).Info("Wrote output", "file", path)
		return nil
	}
	if _, err := io.WriteString(c.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
