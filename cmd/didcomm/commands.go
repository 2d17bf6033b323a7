package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZentaChain/zentalk-didcomm/pkg/messaging"
)

func newDirectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "direct",
		Short: "Build a basic text message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hdr, err := headerOptions(cmd)
			if err != nil {
				return err
			}
			content, err := cmd.Flags().GetString("message")
			if err != nil {
				return err
			}

			msg, err := messaging.CreateDirectMessage(messaging.DirectMessageOptions{
				HeaderOptions: hdr,
				Message:       content,
			})
			if err != nil {
				return err
			}
			return emitMessage(cmd, msg)
		},
	}

	registerHeaderFlags(cmd)
	cmd.Flags().String("message", "", "Message text")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Build a key-sharing message from JWK files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hdr, err := headerOptions(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			files, err := flags.GetStringArray("key-file")
			if err != nil {
				return err
			}
			generate, err := flags.GetInt("generate")
			if err != nil {
				return err
			}

			var keys []messaging.JSONWebKey
			for _, path := range files {
				loaded, err := readKeyFile(path)
				if err != nil {
					return err
				}
				keys = append(keys, loaded...)
			}
			for i := 0; i < generate; i++ {
				key, err := messaging.GenerateJSONWebKey()
				if err != nil {
					return err
				}
				keys = append(keys, key)
			}

			msg, err := messaging.CreateKeySharingMessage(messaging.KeySharingMessageOptions{
				HeaderOptions: hdr,
				Keys:          keys,
			})
			if err != nil {
				return err
			}
			return emitMessage(cmd, msg)
		},
	}

	registerHeaderFlags(cmd)
	cmd.Flags().StringArray("key-file", nil, "JWK or JWK set file (repeatable)")
	cmd.Flags().Int("generate", 0, "Also include this many freshly generated P-256 keys")

	return cmd
}

// readKeyFile loads a single JWK or a {"keys": [...]} set
func readKeyFile(path string) ([]messaging.JSONWebKey, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var set struct {
		Keys []messaging.JSONWebKey `json:"keys"`
	}
	if err := json.Unmarshal(data, &set); err == nil && set.Keys != nil {
		return set.Keys, nil
	}

	var key messaging.JSONWebKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}
	return []messaging.JSONWebKey{key}, nil
}

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Build a media-sharing message",
		Long: `Build a media-sharing message.

Inlined items embed a local file as base64. Referenced items point at a link
and carry an integrity hash, either given directly (--ref link=hash) or
computed from a local copy (--ref-file link=path). Alternatively --options
reads a complete JSON option bundle.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mediaOptions(cmd)
			if err != nil {
				return err
			}

			msg, err := messaging.CreateMediaItemMessage(opts)
			if err != nil {
				return err
			}
			return emitMessage(cmd, msg)
		},
	}

	registerHeaderFlags(cmd)
	flags := cmd.Flags()
	flags.StringArray("inline", nil, "File to inline (repeatable)")
	flags.StringArray("ref", nil, "Referenced item as link=hash (repeatable)")
	flags.StringArray("ref-file", nil, "Referenced item as link=local-path; the hash is computed (repeatable)")
	flags.String("options", "", "JSON file with a complete media message option bundle")

	return cmd
}

func mediaOptions(cmd *cobra.Command) (messaging.MediaItemsMessageOptions, error) {
	var opts messaging.MediaItemsMessageOptions
	flags := cmd.Flags()

	if path, _ := flags.GetString("options"); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return opts, fmt.Errorf("read options: %w", err)
		}
		if err := json.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("parse options: %w", err)
		}
		return opts, nil
	}

	hdr, err := headerOptions(cmd)
	if err != nil {
		return opts, err
	}
	opts.HeaderOptions = hdr

	inline, _ := flags.GetStringArray("inline")
	for _, path := range inline {
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return opts, fmt.Errorf("read inline file: %w", err)
		}
		name := filepath.Base(path)
		item := messaging.NewMediaItemInlined(name, mediaType(name, content), content)
		item.Filename = name
		opts.MediaItems = append(opts.MediaItems, item)
	}

	refs, _ := flags.GetStringArray("ref")
	for _, ref := range refs {
		link, hash, ok := cutLast(ref, "=")
		if !ok || link == "" || hash == "" {
			return opts, fmt.Errorf("invalid --ref %q: want link=hash", ref)
		}
		name := linkName(link)
		opts.MediaItems = append(opts.MediaItems, messaging.MediaItemReferenced{
			ID:        name,
			MediaType: mediaType(name, nil),
			Filename:  name,
			Link:      link,
			Hash:      hash,
		})
	}

	refFiles, _ := flags.GetStringArray("ref-file")
	for _, ref := range refFiles {
		link, path, ok := cutLast(ref, "=")
		if !ok || link == "" || path == "" {
			return opts, fmt.Errorf("invalid --ref-file %q: want link=path", ref)
		}
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return opts, fmt.Errorf("read referenced file: %w", err)
		}
		name := linkName(link)
		item, err := messaging.NewMediaItemReferenced(name, mediaType(name, content), link, content)
		if err != nil {
			return opts, err
		}
		item.Filename = name
		opts.MediaItems = append(opts.MediaItems, item)
	}

	return opts, nil
}

// mediaType guesses a media type from the file extension, then the content
func mediaType(name string, content []byte) string {
	t := mime.TypeByExtension(filepath.Ext(name))
	if t == "" && content != nil {
		t = http.DetectContentType(content)
	}
	if t != "" {
		// drop parameters such as charset
		base, _, _ := strings.Cut(t, ";")
		return strings.TrimSpace(base)
	}
	return "application/octet-stream"
}

// cutLast splits s around the last sep, so links may carry query strings
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func linkName(link string) string {
	link, _, _ = strings.Cut(link, "?")
	if i := strings.LastIndex(link, "/"); i >= 0 && i < len(link)-1 {
		return link[i+1:]
	}
	return link
}
