package main

import (
	"os"

	"github.com/eshaffer321/inbox-reconcile/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
