// Command autoprice trains and evaluates the used-car price model.
package main

import (
	"os"

	"github.com/YuminosukeSato/autoprice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
