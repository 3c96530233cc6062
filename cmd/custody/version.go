package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/custody"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of custody",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("custody version %s\n", strings.TrimSpace(custody.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
