package main

import (
	"os"

	"github.com/recoveryd-dev/recoveryd/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
