// Command assetctl runs asset repository operations against the spreadsheet
// directly, without the HTTP server. It reads the same environment (and .env
// file) as the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
