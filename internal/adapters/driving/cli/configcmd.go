package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
	kindDuration
)

// setting describes a key accepted in config.toml.
type setting struct {
	kind  settingKind
	parse func(string) error
}

func parsed[T any](fn func(string) (T, error)) func(string) error {
	return func(s string) error {
		_, err := fn(s)
		return err
	}
}

var settings = map[string]setting{
	"url":                     {kind: kindString},
	"token":                   {kind: kindString},
	"host":                    {kind: kindString, parse: parsed(domain.ParseHostType)},
	"method":                  {kind: kindString, parse: parsed(domain.ParseCloneMethod)},
	"naming":                  {kind: kindString, parse: parsed(domain.ParseNamingStrategy)},
	"archived":                {kind: kindString, parse: parsed(domain.ParseArchivedPolicy)},
	"vcs":                     {kind: kindString, parse: parsed(domain.ParseVCSBackend)},
	"print_format":            {kind: kindString, parse: parsed(domain.ParsePrintFormat)},
	"include":                 {kind: kindList},
	"exclude":                 {kind: kindList},
	"git_options":             {kind: kindList},
	"concurrency":             {kind: kindInt},
	"api.concurrency":         {kind: kindInt},
	"api.rate_limit":          {kind: kindInt},
	"api.requests_per_second": {kind: kindFloat},
	"api.rate_window":         {kind: kindDuration},
	"recursive":               {kind: kindBool},
	"use_fetch":               {kind: kindBool},
	"hide_token":              {kind: kindBool},
	"include_shared":          {kind: kindBool},
	"fail_fast":               {kind: kindBool},
	"ignore_case":             {kind: kindBool},
	"no_progress":             {kind: kindBool},
	"no_history":              {kind: kindBool},
	"verbose":                 {kind: kindBool},
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change config.toml",
		Long: `Reads and writes the configuration file (~/.repotree/config.toml unless
--config-dir is given). Command line flags and environment variables
override values stored here.`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show all stored settings",
			Args:  cobra.NoArgs,
			RunE:  runConfigList,
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Show one setting",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a setting; lists are comma separated",
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "unset <key>",
			Short: "Remove a setting",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigUnset,
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the accepted keys",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				keys := make([]string, 0, len(settings))
				for k := range settings {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					cmd.Println(k)
				}
			},
		},
	)
	return configCmd
}

func requireConfig(cmd *cobra.Command) (driven.ConfigStore, error) {
	store, err := openConfig(cmd)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("configuration file not configured")
	}
	return store, nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	store, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	keys := store.Keys()
	if len(keys) == 0 {
		cmd.Printf("No settings in %s.\n", store.Path())
		return nil
	}
	for _, k := range keys {
		v, _ := store.Get(k)
		cmd.Printf("%s = %s\n", k, formatSetting(k, v))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	v, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("%s: %w", args[0], domain.ErrNotFound)
	}
	cmd.Println(formatSetting(args[0], v))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	value, err := parseSetting(args[0], args[1])
	if err != nil {
		return err
	}
	store, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	if err := store.Set(args[0], value); err != nil {
		return fmt.Errorf("saving %s: %w", store.Path(), err)
	}
	cmd.Printf("%s = %s\n", args[0], formatSetting(args[0], value))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	store, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return fmt.Errorf("saving %s: %w", store.Path(), err)
	}
	return nil
}

// parseSetting converts raw into the TOML type stored for key.
func parseSetting(key, raw string) (any, error) {
	s, ok := settings[key]
	if !ok {
		return nil, domain.NewConfigError(key, "unknown setting, see 'repotree config keys'")
	}
	raw = strings.TrimSpace(raw)
	if s.parse != nil {
		if err := s.parse(raw); err != nil {
			return nil, err
		}
	}

	switch s.kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domain.NewConfigError(key, "invalid integer %q", raw)
		}
		return int64(n), nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.NewConfigError(key, "invalid number %q", raw)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.NewConfigError(key, "invalid boolean %q", raw)
		}
		return b, nil
	case kindList:
		return splitCSV(raw), nil
	case kindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, domain.NewConfigError(key, "invalid duration %q", raw)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

func formatSetting(key string, v any) string {
	if key == "token" {
		if s, ok := v.(string); ok {
			return maskToken(s)
		}
	}
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
