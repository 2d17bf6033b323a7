// Package main provides a command-line tool for assembling DIDComm messages
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "didcomm",
		Short:         "Assemble DIDComm v2 plaintext messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			lvl, err := logrus.ParseLevel(level)
			if err != nil {
				return err
			}
			logrus.SetOutput(cmd.ErrOrStderr())
			logrus.SetLevel(lvl)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.Bool("pretty", false, "Indent JSON output")
	flags.String("log-level", "warn", "Logging level: debug, info, warn, error")
	flags.String("archive", "", "Also store built messages in this archive database")
	flags.String("archive-password", "", "Archive password (falls back to DIDCOMM_DB_PASSWORD env var)")

	root.AddCommand(
		newDirectCmd(),
		newKeysCmd(),
		newMediaCmd(),
		newKeygenCmd(),
		newHashCmd(),
	)

	return root
}
