// The main package for the otodom-crawler executable.
package main

import (
	"github.com/pgorczak/otodom-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
