package main

import (
	"os"

	"github.com/tartampluch/go-triangles/internal/cli"
)

// main delegates to cli.Execute so deferred cleanup runs before os.Exit.
func main() {
	os.Exit(cli.Execute())
}
