// Package main is the imageflow command itself.
package main

import (
	"log"
	"os"

	"github.com/TimingSpace/ImageFlow/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
