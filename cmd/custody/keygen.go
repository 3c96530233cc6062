package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/custody/pkg/adapters/keys"
	"github.com/aretw0/custody/pkg/core"
)

var (
	keygenCount int
	keygenJSON  bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate wallet key pairs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if keygenCount < 1 {
			fatal("Invalid flags", fmt.Errorf("--count must be at least 1"))
		}

		provider := keys.New()
		pairs := make([]core.KeyPair, 0, keygenCount)
		for range keygenCount {
			kp, err := provider.GenerateKeypair()
			if err != nil {
				fatal("Failed to generate key pair", err)
			}
			pairs = append(pairs, kp)
		}

		if keygenJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(pairs); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}
		for _, kp := range pairs {
			fmt.Printf("public:  %s\nprivate: %s\n", kp.PublicKey, kp.PrivateKey)
		}
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().IntVarP(&keygenCount, "count", "n", 1, "Number of key pairs")
	keygenCmd.Flags().BoolVar(&keygenJSON, "json", false, "Output in JSON format")
}
