package main

import (
	"os"

	"github.com/riskibarqy/clublocker/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
