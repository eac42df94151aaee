package main

import (
	"os"

	"github.com/sliops/kqlframe/cli"
)

func main() {
	os.Exit(cli.Execute())
}
