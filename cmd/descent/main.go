// Command descent is a CLI tool for parsing, checking and inspecting JSON
// documents with the descent grammar engine.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/golangsnmp/descent"
	"github.com/golangsnmp/descent/cmd/internal/cliutil"
)

// Exit codes.
const (
	exitOK      = 0 // success
	exitError   = 1 // usage error or I/O failure
	exitInvalid = 2 // at least one input failed to parse
)

const usage = `descent - recursive-descent JSON parser

Usage:
  descent <command> [options] [arguments]

Commands:
  parse    Parse documents and print the resulting values
  tokens   Show the token sequence of a document
  check    Validate every document under files or directories
  watch    Re-check documents whenever they change
  repl     Interactive parse loop
  grammar  Print the JSON grammar rules
  version  Show version

Common options:
  -c, --config FILE   Read defaults from a YAML config file
  -v, --verbose       Enable debug logging
  -vv                 Enable trace logging (implies -v)
  -h, --help          Show help

Config file keys: format, indent, max_input_size, trace.
Without -c, $DESCENT_CONFIG is read if set.

Examples:
  descent parse testdata/sample.json
  echo '[1, 2, {"a": null}]' | descent parse -format yaml
  descent parse https://example.com/data.json
  descent tokens -e '{"a": 1}'
  descent check ./configs
  descent watch ./configs
`

type cli struct {
	verbose    int
	helpFlag   bool
	configPath string
	config     cliutil.Config
}

func main() {
	os.Exit(run())
}

func run() int {
	var c cli
	args := os.Args[1:]
	var cmdArgs []string
	var cmd string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			c.helpFlag = true
		case arg == "-v" || arg == "--verbose":
			if c.verbose < 1 {
				c.verbose = 1
			}
		case arg == "-vv":
			c.verbose = 2
		case arg == "-c" || arg == "--config":
			if i+1 < len(args) {
				i++
				c.configPath = args[i]
			}
		case strings.HasPrefix(arg, "--config="):
			c.configPath = arg[9:]
		case len(arg) > 1 && arg[0] == '-':
			cmdArgs = append(cmdArgs, arg)
		default:
			if cmd == "" {
				cmd = arg
			} else {
				cmdArgs = append(cmdArgs, arg)
			}
		}
	}

	if c.helpFlag && cmd == "" {
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	}

	if cmd == "" {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitError
	}

	if err := c.loadConfig(); err != nil {
		printError("config: %v", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "parse":
		return c.cmdParse(ctx, cmdArgs)
	case "tokens":
		return c.cmdTokens(ctx, cmdArgs)
	case "check":
		return c.cmdCheck(ctx, cmdArgs)
	case "watch":
		return c.cmdWatch(ctx, cmdArgs)
	case "repl":
		return c.cmdRepl(cmdArgs)
	case "grammar":
		return c.cmdGrammar(cmdArgs)
	case "version":
		printVersion()
		return exitOK
	case "help":
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitError
	}
}

// loadConfig reads -c, or $DESCENT_CONFIG when it is set. An explicit -c
// file must exist.
func (c *cli) loadConfig() error {
	path, required := c.configPath, true
	if path == "" {
		path, required = os.Getenv("DESCENT_CONFIG"), false
	}
	if path == "" {
		c.config = cliutil.DefaultConfig()
		return nil
	}
	cfg, err := cliutil.LoadConfig(path, required)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = descent.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// parseOptions builds driver options from the config and verbosity.
func (c *cli) parseOptions() []descent.ParseOption {
	var opts []descent.ParseOption
	if logger := c.setupLogger(); logger != nil {
		opts = append(opts, descent.WithLogger(logger))
	}
	if c.config.MaxInputSize > 0 {
		opts = append(opts, descent.WithMaxInputSize(c.config.MaxInputSize))
	}
	return opts
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("descent %s\n", version)
}

func printError(format string, args ...any) {
	cliutil.PrintError(format, args...)
}
