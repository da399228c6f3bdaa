package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/golangsnmp/descent"
	"github.com/golangsnmp/descent/cmd/internal/cliutil"
)

const replUsage = `descent repl - Interactive parse loop

Usage:
  descent repl [options]

Each complete input is parsed and printed. Input with unclosed brackets or
strings continues on the next line.

Commands inside the loop:
  :json          Print values as JSON
  :yaml          Print values as YAML
  :tokens TEXT   Show the tokens of TEXT
  :help          Show this help
  exit, quit     Leave (or Ctrl+D)

Options:
  -h, --help   Show help
`

const (
	replPrompt         = "descent> "
	replContinuePrompt = "     ... "
)

func (c *cli) cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, replUsage) }

	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, replUsage)
		return exitOK
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".descent_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	s := &replSession{
		out:    os.Stdout,
		format: c.config.Format,
		indent: c.config.Indent,
		opts:   c.parseOptions(),
	}
	fmt.Fprintln(s.out, "Type ':help' for commands, Ctrl+D to quit")

	for {
		prompt := replPrompt
		if s.pending.Len() > 0 {
			prompt = replContinuePrompt
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				s.pending.Reset()
				fmt.Fprintln(s.out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return exitOK
			}
			printError("read: %v", err)
			return exitError
		}

		full, done := s.feed(input)
		if done {
			return exitOK
		}
		if full != "" {
			line.AppendHistory(full)
		}
	}
}

// replSession holds the state of one interactive loop.
type replSession struct {
	out     io.Writer
	format  string
	indent  int
	opts    []descent.ParseOption
	pending strings.Builder
}

// feed handles one input line. It returns the complete input once it has
// been evaluated, and done when the user asked to leave.
func (s *replSession) feed(input string) (full string, done bool) {
	trimmed := strings.TrimSpace(input)
	if s.pending.Len() == 0 {
		switch {
		case trimmed == "":
			return "", false
		case trimmed == "exit" || trimmed == "quit":
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.command(trimmed)
			return trimmed, false
		}
	}

	if s.pending.Len() > 0 {
		s.pending.WriteByte('\n')
	}
	s.pending.WriteString(input)
	full = s.pending.String()
	if needsMoreInput(full) {
		return "", false
	}
	s.pending.Reset()
	s.eval(full)
	return full, false
}

func (s *replSession) command(cmd string) {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case ":json":
		s.format = cliutil.FormatJSON
	case ":yaml":
		s.format = cliutil.FormatYAML
	case ":tokens":
		toks, err := descent.Tokenize(arg)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return
		}
		writeTokenTable(s.out, toks)
	case ":help":
		fmt.Fprint(s.out, replUsage)
	default:
		fmt.Fprintf(s.out, "unknown command %s (try :help)\n", name)
	}
}

func (s *replSession) eval(text string) {
	v, err := descent.Parse(text, s.opts...)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if err := cliutil.WriteValue(s.out, v, s.format, s.indent); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

// needsMoreInput reports whether text has unclosed brackets or an
// unterminated string. Surplus closing brackets do not ask for more.
func needsMoreInput(text string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
		}
	}
	return inString || depth > 0
}
