package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
	"github.com/ZentaChain/zentalk-didcomm/pkg/messaging"
	"github.com/ZentaChain/zentalk-didcomm/pkg/storage"
)

// writeJSON prints v honouring --pretty
func writeJSON(cmd *cobra.Command, v any) error {
	pretty, err := cmd.Flags().GetBool("pretty")
	if err != nil {
		return err
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", messaging.ErrSerialization, err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// emitMessage archives msg when --archive is set, then prints it
func emitMessage(cmd *cobra.Command, msg *didcomm.Message) error {
	if err := archive(cmd, msg); err != nil {
		return err
	}
	return writeJSON(cmd, msg)
}

func archive(cmd *cobra.Command, msg *didcomm.Message) error {
	flags := cmd.Flags()

	path, err := flags.GetString("archive")
	if err != nil || path == "" {
		return err
	}

	password, err := flags.GetString("archive-password")
	if err != nil {
		return err
	}
	if password == "" {
		password = os.Getenv("DIDCOMM_DB_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("archive password required: set --archive-password or DIDCOMM_DB_PASSWORD")
	}

	db, err := storage.NewMessageDB(path, password)
	if err != nil {
		return err
	}
	defer db.Close()

	stored, err := db.SaveMessage(msg)
	if err != nil {
		return fmt.Errorf("archive message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"id":   stored.MessageID,
		"path": path,
	}).Info("Archived message")
	return nil
}
