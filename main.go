package main

import (
	"os"

	"github.com/scan-io-git/panelscan/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
