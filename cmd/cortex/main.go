// Command cortex is the CLI entry point for the local knowledge indexer.
package main

import "github.com/Boswecw/cortex-local/internal/cli"

func main() {
	cli.Execute()
}
