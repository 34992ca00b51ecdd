package main

import (
	"os"

	"github.com/dshills/ebert/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
