package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diskconsole/internal/config"
	"diskconsole/internal/console"
	"diskconsole/internal/export"
	"diskconsole/internal/logging"
	"diskconsole/internal/remote"
	"diskconsole/internal/script"
)

const appVersion = "v0.1.0"

var (
	// Global flags
	configPath      string
	stateDirFlag    string
	sessionOverride string
	scriptPath      string
	baseURLFlag     string
	watchScript     bool
	offlineFlag     bool
	resumeSession   bool
	verbose         bool

	// highlight / exec
	outputFormat string
	lineNumbers  bool

	smokeOutDir string
)

// errOutputHasErrors makes `exec` exit non-zero without printing anything
// beyond the highlighted output.
var errOutputHasErrors = errors.New("output contains error lines")

var rootCmd = &cobra.Command{
	Use:   "diskconsole",
	Short: "Console for the disk and file-system simulator",
	Long: `diskconsole is a two-surface terminal console for the remote disk
simulator. Commands typed (or loaded from a script) on the input surface are
highlighted as you type; Execute sends them to the simulator and the reply
appears on the output surface with every error line annotated.

Run without arguments to start the interactive console.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(false)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a headless session driven by the command bus",
	Long: `Runs the console without a terminal. Commands are read from
<state>/<session>/commands.jsonl, one JSON object per line:

  {"version":1,"type":"exec","text":"mkdisk -size=10"}
  {"version":1,"type":"stop"}

"diskconsole send" appends these lines for you. Network access is disabled
unless DISKCONSOLE_ENABLE_NETWORK is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(true)
	},
}

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run a deterministic non-interactive smoke simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(true)
		if err != nil {
			return err
		}
		defer rt.close()
		outDir := strings.TrimSpace(smokeOutDir)
		if outDir == "" {
			outDir = filepath.Join(rt.cfg.StateDir, "verify", "tui", fmt.Sprintf("run_%d", time.Now().UnixMilli()))
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create smoke dir: %w", err)
		}
		report := runSmoke(newAppModel(rt.appConfig(), rt.exec, rt.logger))
		_ = os.WriteFile(filepath.Join(outDir, "view.txt"), []byte(report.view+"\n"), 0o644)
		_ = os.WriteFile(filepath.Join(outDir, "summary.json"), []byte(report.json+"\n"), 0o644)
		writeSessionSummary(report.final)
		_ = report.final.events.Close()
		if !report.ok {
			return errors.New("smoke checks failed, see " + filepath.Join(outDir, "summary.json"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "console-smoke-ok")
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec FILE|-",
	Short: "Execute a script once and print the highlighted reply",
	Long: `Reads commands from FILE (or stdin for "-"), sends them to the
simulator in one execute round trip and prints the reply. The exit code is 1
when the reply contains error lines.`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

var highlightCmd = &cobra.Command{
	Use:   "highlight FILE|-",
	Short: "Render a script or captured output with console highlighting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		return export.Write(cmd.OutOrStdout(), text, export.Options{
			Format:      outputFormat,
			LineNumbers: lineNumbers,
			Standalone:  strings.EqualFold(outputFormat, "html"),
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <state-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "State directory (default: .diskconsole)")
	rootCmd.PersistentFlags().StringVar(&sessionOverride, "session-id", "", "Override session id (for dev sessions)")
	rootCmd.PersistentFlags().BoolVar(&resumeSession, "resume", false, "Reattach to the current session")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Simulator base URL")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "Never contact the simulator")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Load this script into the input surface")
	rootCmd.Flags().BoolVarP(&watchScript, "watch", "w", false, "Reload the script whenever it changes on disk")
	serveCmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Load this script into the input surface")

	smokeCmd.Flags().StringVar(&smokeOutDir, "out", "", "Directory for view.txt and summary.json")

	execCmd.Flags().StringVarP(&outputFormat, "format", "f", "terminal256", "Output format: "+strings.Join(export.Formats, ", "))
	highlightCmd.Flags().StringVarP(&outputFormat, "format", "f", "terminal256", "Output format: "+strings.Join(export.Formats, ", "))
	highlightCmd.Flags().BoolVarP(&lineNumbers, "line-numbers", "n", false, "Number lines (html only)")

	// everything after TYPE belongs to the bus command, "-size=10" included
	sendCmd.Flags().SetInterspersed(false)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(smokeCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(highlightCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errOutputHasErrors) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// runtimeEnv is everything a run needs after config, session and logging
// are resolved.
type runtimeEnv struct {
	cfg       *config.Config
	sessionID string
	offline   bool
	timeout   time.Duration
	debounce  time.Duration
	logger    *zap.Logger
	exec      console.Executor
}

func setup(headless bool) (*runtimeEnv, error) {
	cfg, err := config.Load(configPath, stateDirFlag)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(baseURLFlag) != "" {
		cfg.Remote.BaseURL = baseURLFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	debounce, err := cfg.Debounce()
	if err != nil {
		return nil, err
	}

	// Headless runs stay off the network unless asked, so smoke runs are
	// reproducible without a simulator.
	offline := offlineFlag || cfg.Remote.DisableNetwork || (headless && !envBool("DISKCONSOLE_ENABLE_NETWORK"))

	sessionID, err := resolveSession(cfg.StateDir, sessionOverride, resumeSession || envBool("DISKCONSOLE_RESUME"))
	if err != nil {
		return nil, err
	}

	logPath := cfg.Logging.File
	if logPath != "" && !filepath.IsAbs(logPath) {
		logPath = filepath.Join(cfg.StateDir, sessionID, logPath)
	}
	logger, err := logging.New(logPath, cfg.Logging.Level, verbose)
	if err != nil {
		return nil, err
	}

	var exec console.Executor = remote.Offline{}
	if !offline {
		exec = remote.New(cfg.Remote.BaseURL, remote.WithTimeout(timeout), remote.WithLogger(logger))
	}
	logger.Info("console configured",
		zap.String("session", sessionID),
		zap.String("base_url", cfg.Remote.BaseURL),
		zap.Bool("offline", offline),
		zap.Duration("timeout", timeout))

	return &runtimeEnv{
		cfg:       cfg,
		sessionID: sessionID,
		offline:   offline,
		timeout:   timeout,
		debounce:  debounce,
		logger:    logger,
		exec:      exec,
	}, nil
}

func (rt *runtimeEnv) close() {
	_ = rt.logger.Sync()
}

func (rt *runtimeEnv) appConfig() appConfig {
	return appConfig{
		stateDir:       rt.cfg.StateDir,
		sessionID:      rt.sessionID,
		version:        appVersion,
		baseURL:        rt.cfg.Remote.BaseURL,
		offline:        rt.offline,
		commandsPath:   commandBusFile(rt.cfg.StateDir, rt.sessionID),
		scriptPath:     scriptPath,
		autoComplete:   rt.cfg.Editor.AutoComplete,
		historyLimit:   rt.cfg.Editor.HistoryLimit,
		requestTimeout: rt.timeout,
	}
}

func runInteractive(headless bool) error {
	rt, err := setup(headless)
	if err != nil {
		return err
	}
	defer rt.close()

	m := newAppModel(rt.appConfig(), rt.exec, rt.logger)
	defer m.events.Close() //nolint:errcheck // journal flush on exit

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watchScript && scriptPath != "" {
		m = m.withScriptUpdates(startWatch(ctx, scriptPath, rt.debounce, rt.logger))
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if headless {
		opts = []tea.ProgramOption{
			tea.WithoutRenderer(),
			tea.WithInput(bytes.NewReader(nil)),
			tea.WithOutput(io.Discard),
		}
	}
	finalModel, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return err
	}
	if am, ok := finalModel.(appModel); ok {
		writeSessionSummary(am)
	}
	return nil
}

// startWatch runs the script watcher until ctx is done. Only the newest
// content is kept when the UI falls behind.
func startWatch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger) <-chan string {
	ch := make(chan string, 1)
	go func() {
		err := script.Watch(ctx, path, debounce, logger, func(text string) {
			select {
			case ch <- text:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- text:
			default:
			}
		})
		if err != nil {
			logger.Warn("script watch stopped", zap.String("path", path), zap.Error(err))
		}
	}()
	return ch
}

func runExec(cmd *cobra.Command, args []string) error {
	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.close()

	text, err := readSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(console.WithInput(text))
	res, _ := c.Execute(ctx, rt.exec)
	if res.Err != nil {
		rt.logger.Warn("execute failed", zap.Error(res.Err))
	}
	out := c.Output()
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if err := export.Write(cmd.OutOrStdout(), out, export.Options{Format: outputFormat}); err != nil {
		return err
	}
	if len(c.Annotations()) > 0 {
		return errOutputHasErrors
	}
	return nil
}

// readSource reads a script file, or stdin for "-".
func readSource(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return script.Load(arg)
	}
	raw, err := io.ReadAll(io.LimitReader(stdin, script.MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if len(raw) > script.MaxSize {
		return "", script.ErrTooLarge
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n"), nil
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}
