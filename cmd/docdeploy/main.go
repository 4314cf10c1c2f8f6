package main

import (
	"io"
	"os"

	"github.com/jmcdonald/docdeploy/internal/cli"
)

// version is set via ldflags at build time: -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, _ io.Reader, stdout, stderr io.Writer) int {
	c := cli.New(version)
	c.Args = args
	c.Out = stdout
	c.Err = stderr
	return c.Run()
}
