// jvs is the theming toolkit for jorgevs.com: accent extraction, palette
// derivation, randomized themes and the local development server.
package main

import (
	"os"

	"github.com/jvsvault/jorgevs/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
