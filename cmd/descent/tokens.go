package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/golangsnmp/descent"
)

const tokensUsage = `descent tokens - Show the token sequence of a document

Usage:
  descent tokens [options] [INPUT]

INPUT is a file path, an http(s) URL, or - for stdin (the default).

Options:
  -e EXPR      Tokenize EXPR instead of reading INPUT
  --json       Output as JSON array
  -h, --help   Show help

Examples:
  descent tokens -e '{"a": [1, true]}'
  descent tokens data.json
`

func (c *cli) cmdTokens(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, tokensUsage) }

	expr := fs.String("e", "", "tokenize this text")
	jsonOut := fs.Bool("json", false, "output as JSON array")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, tokensUsage)
		return exitOK
	}

	text := *expr
	if text == "" {
		in := "-"
		switch fs.NArg() {
		case 0:
		case 1:
			in = fs.Arg(0)
		default:
			printError("tokens takes at most one input")
			return exitError
		}
		data, err := c.readInput(ctx, in)
		if err != nil {
			printError("%s: %v", in, err)
			return exitError
		}
		text = string(data)
	}

	toks, err := descent.Tokenize(text)
	if err != nil {
		printError("%v", err)
		return exitInvalid
	}

	if *jsonOut {
		if err := writeTokensJSON(os.Stdout, toks); err != nil {
			printError("write: %v", err)
			return exitError
		}
		return exitOK
	}
	writeTokenTable(os.Stdout, toks)
	return exitOK
}

type tokenJSON struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Offset  int    `json:"offset"`
	Keyword bool   `json:"keyword,omitempty"`
}

func writeTokensJSON(w io.Writer, toks []descent.Token) error {
	out := make([]tokenJSON, len(toks))
	for i, tok := range toks {
		out[i] = tokenJSON{
			Kind:    tok.Kind.String(),
			Text:    tok.Text,
			Offset:  tok.Offset,
			Keyword: tok.IsKeyword(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTokenTable(w io.Writer, toks []descent.Token) {
	data := make([][]string, 0, len(toks))
	for _, tok := range toks {
		data = append(data, []string{strconv.Itoa(tok.Offset), tok.Kind.String(), tok.Text})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"OFFSET", "KIND", "TEXT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()
}
