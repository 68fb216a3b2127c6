package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"diskconsole/internal/config"
)

var configForce bool

var sendCmd = &cobra.Command{
	Use:   "send TYPE [ARGS...]",
	Short: "Queue a command on the current session's command bus",
	Long: `Appends one command to <state>/<session>/commands.jsonl, where a
running console (usually "serve") picks it up on its next tick.

  diskconsole send exec mkdisk -size=10 -path=/home/a.dsk
  diskconsole send key ctrl+p e x p enter
  diskconsole send palette export
  diskconsole send stop

The session is the one recorded in current.json unless --session-id is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, stateDirFlag)
		if err != nil {
			return err
		}
		sid, err := resolveSession(cfg.StateDir, sessionOverride, true)
		if err != nil {
			return err
		}
		path, err := sendBusCommand(cfg.StateDir, sid, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "queued %s for session %s (%s)\n", args[0], sid, path)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the console configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Writes the default configuration to --config, or to
<state-dir>/config.yaml when --config is not set. An existing file is kept
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfigFile(configPath, stateDirFlag, configForce)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	},
}

func commandBusFile(stateDir, sessionID string) string {
	return filepath.Join(stateDir, sessionID, "commands.jsonl")
}

// sendBusCommand maps CLI arguments onto one bus line. key takes key names,
// load takes an optional path and everything else takes free text.
func sendBusCommand(stateDir, sessionID, typ string, args []string) (string, error) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	c := busCommand{Type: typ, Source: "cli"}
	switch typ {
	case "key":
		if len(args) == 0 {
			return "", errors.New("send key: no keys given")
		}
		c.Keys = strings.Join(args, ",")
	case "load":
		if len(args) > 1 {
			return "", errors.New("send load: at most one path")
		}
		if len(args) == 1 {
			p, err := filepath.Abs(args[0])
			if err != nil {
				return "", fmt.Errorf("send load: %w", err)
			}
			c.Path = p
		}
	case "input", "append", "exec", "palette":
		c.Text = strings.Join(args, " ")
	case "stop":
		if len(args) > 0 {
			return "", errors.New("send stop: takes no arguments")
		}
	default:
		return "", fmt.Errorf("send: unknown command type %q", typ)
	}
	path := commandBusFile(stateDir, sessionID)
	if err := appendBusCommand(path, c); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	return path, nil
}

// initConfigFile saves the defaults, with stateDir applied, to path or to
// the default location.
func initConfigFile(path, stateDir string, force bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultPath(stateDir)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config %s already exists (use --force to overwrite)", path)
	}
	cfg := config.DefaultConfig()
	if v := strings.TrimSpace(stateDir); v != "" {
		cfg.StateDir = v
	}
	if err := cfg.Save(path); err != nil {
		return "", err
	}
	return path, nil
}
