package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/custody/pkg/adapters/obscure"
)

var obscureReveal bool

var obscureCmd = &cobra.Command{
	Use:   "obscure <text>",
	Short: "Show how the hex codec masks (or unmasks) a value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		codec := obscure.NewHex()
		if !obscureReveal {
			fmt.Println(codec.Obscure(args[0]))
			return
		}
		plain, err := codec.Reveal(args[0])
		if err != nil {
			fatal("Failed to reveal", err)
		}
		fmt.Println(plain)
	},
}

func init() {
	rootCmd.AddCommand(obscureCmd)
	obscureCmd.Flags().BoolVar(&obscureReveal, "reveal", false, "Decode a value produced by the hex codec")
}
