package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/pretty"
)

// dumpJSON prints data colorized to stderr, so it never mixes with output
// that scripts consume from stdout.
func dumpJSON(data any) error {
	b, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}

	b = pretty.Color(b, pretty.TerminalStyle)
	fmt.Fprintln(os.Stderr, string(b))

	return nil
}
