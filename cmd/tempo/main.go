package main

import (
	"os"

	"github.com/askiada/go-tempo/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
