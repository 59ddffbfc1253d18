package cmd

import (
	"github.com/spf13/cobra"

	"github.com/replicate/pfetch/cmd/root"
	"github.com/replicate/pfetch/cmd/version"
)

func GetRootCommand() *cobra.Command {
	rootCMD := root.GetCommand()
	rootCMD.AddCommand(version.VersionCMD)
	return rootCMD
}
