package main

import (
	"os"

	"finpulse/internal/cli"
)

func main() {
	args := os.Args[1:]

	if ok, cmd := cli.ParseFlags(args); ok {
		cmd.Run()
	}
}
