package main

import (
	"os"

	"github.com/replicate/pfetch/cmd"
	"github.com/replicate/pfetch/pkg/logging"
)

func main() {
	logging.SetupLogger()
	rootCMD := cmd.GetRootCommand()
	if err := rootCMD.Execute(); err != nil {
		os.Exit(1)
	}
}
