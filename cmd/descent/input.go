package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golangsnmp/descent"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// isURL reports whether arg names an http or https resource.
func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// readInput returns the content named by arg: "-" for stdin, an http(s)
// URL, or a file path. Compressed files are decoded by suffix.
func (c *cli) readInput(ctx context.Context, arg string) ([]byte, error) {
	limit := c.config.MaxInputSize
	switch {
	case arg == "-":
		return descent.ReadLimited(os.Stdin, limit)
	case isURL(arg):
		return fetch(ctx, arg, limit)
	default:
		return descent.ReadDocument(descent.Files(arg), arg, limit)
	}
}

func fetch(ctx context.Context, url string, limit int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return descent.ReadLimited(resp.Body, limit)
}
