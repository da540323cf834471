package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	var dotenv bool
	c := &cobra.Command{
		Use:   "keys",
		Short: "Generate COOKIE_HASH_KEY and COOKIE_BLOCK_KEY values (base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := securecookie.GenerateRandomKey(32)
			block := securecookie.GenerateRandomKey(32)
			if hash == nil || block == nil {
				return errors.New("generate keys: system randomness unavailable")
			}
			prefix := "export "
			if dotenv {
				prefix = ""
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%sCOOKIE_HASH_KEY=%s\n", prefix, base64.StdEncoding.EncodeToString(hash))
			fmt.Fprintf(out, "%sCOOKIE_BLOCK_KEY=%s\n", prefix, base64.StdEncoding.EncodeToString(block))
			return nil
		},
	}
	c.Flags().BoolVar(&dotenv, "dotenv", false, "print .env lines instead of shell exports")
	return c
}
