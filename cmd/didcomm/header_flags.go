package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZentaChain/zentalk-didcomm/pkg/messaging"
)

// registerHeaderFlags attaches the header flags shared by all builders
func registerHeaderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("id", "", "Message id (default: random UUID)")
	flags.StringArray("to", nil, "Recipient DID (repeatable, order preserved)")
	flags.String("from", "", "Sender DID")
	flags.String("created", "", `Created time in epoch seconds, or "now"`)
	flags.Uint64("expires", 0, "Expires time in epoch seconds")
}

// headerOptions reads the header flags. Flags that were not given stay
// unset so the corresponding header field is omitted.
func headerOptions(cmd *cobra.Command) (messaging.HeaderOptions, error) {
	var opts messaging.HeaderOptions
	flags := cmd.Flags()

	if flags.Changed("id") {
		id, err := flags.GetString("id")
		if err != nil {
			return opts, err
		}
		opts.ID = &id
	}

	to, err := flags.GetStringArray("to")
	if err != nil {
		return opts, err
	}
	opts.To = to

	if flags.Changed("from") {
		from, err := flags.GetString("from")
		if err != nil {
			return opts, err
		}
		opts.From = &from
	}

	if flags.Changed("created") {
		raw, err := flags.GetString("created")
		if err != nil {
			return opts, err
		}
		created, err := parseCreated(raw)
		if err != nil {
			return opts, err
		}
		opts.CreatedTime = &created
	}

	if flags.Changed("expires") {
		expires, err := flags.GetUint64("expires")
		if err != nil {
			return opts, err
		}
		opts.ExpiresTime = &expires
	}

	return opts, nil
}

func parseCreated(raw string) (uint64, error) {
	if raw == "now" {
		return uint64(time.Now().Unix()), nil
	}
	t, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(`invalid --created %q: want epoch seconds or "now"`, raw)
	}
	return t, nil
}
