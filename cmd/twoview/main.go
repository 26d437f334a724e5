// Package main is the twoview command line tool.
package main

import (
	"os"

	"go.viam.com/twoview/cli"
	"go.viam.com/twoview/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logger := logging.NewBlankLogger("twoview")
		logger.AddAppender(logging.NewWriterAppender(os.Stderr))
		logger.Fatal(err)
	}
}
