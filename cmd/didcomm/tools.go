package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
	"github.com/ZentaChain/zentalk-didcomm/pkg/messaging"
)

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a P-256 JWK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				key messaging.JSONWebKey
				err error
			)
			if d, _ := cmd.Flags().GetString("import"); d != "" {
				key, err = messaging.ImportJSONWebKey(d)
			} else {
				key, err = messaging.GenerateJSONWebKey()
			}
			if err != nil {
				return err
			}
			if kid, _ := cmd.Flags().GetString("kid"); kid != "" {
				key.Kid = kid
			}
			return writeJSON(cmd, key)
		},
	}

	cmd.Flags().String("kid", "", "Key id (default: RFC 7638 thumbprint)")
	cmd.Flags().String("import", "", "Rebuild the JWK from an existing base64url private scalar")

	return cmd
}

func newHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash [file]",
		Short: "Print the integrity hash of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			name, _ := flags.GetString("algorithm")
			algo, err := crypto.ParseHashAlgorithm(name)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			if expected, _ := flags.GetString("verify"); expected != "" {
				ok, err := crypto.VerifyContentHash(expected, content)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: hash mismatch", args[0])
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return err
			}

			var hash string
			if prefixed, _ := flags.GetBool("prefixed"); prefixed {
				hash, err = crypto.PrefixedDigest(algo, content)
			} else {
				hash, err = crypto.ContentHash(algo, content)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().String("algorithm", string(crypto.HashBlake2b256), "Hash algorithm: blake2b-256 or sha2-256")
	cmd.Flags().String("verify", "", "Check the file against this hash instead of printing one")
	cmd.Flags().Bool("prefixed", false, `Print "<algorithm>:<hex>" instead of a multibase multihash`)

	return cmd
}
