package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igsaved/pkg/config"
	"igsaved/pkg/logger"
	"igsaved/pkg/telemetry"
	"igsaved/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	sessionID  string
	profile    string
	outputDir  string
	ledgerFile string
	logLevel   string
	logFile    string
	verbose    bool
)

// env is the state shared by every command once the configuration is loaded
type env struct {
	cfg      *config.Config
	log      logger.Logger
	reporter telemetry.Reporter
	out      io.Writer
}

var current = &env{out: os.Stdout, reporter: telemetry.Nop{}}

// rootCmd runs an interactive export when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "igsaved",
	Short: "Export your saved Instagram posts",
	Long: `igsaved downloads the posts you saved on Instagram into a local folder,
writes a metadata file per post and packs everything into a ZIP backup.

Posts that were already exported are remembered in a ledger file and skipped
on the next run, so repeated runs only fetch what is new.

Authentication uses the sessionid cookie of a logged-in browser session.
Run 'igsaved auth login --help-cookie' to see how to find it.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, exportOptions{interactive: true})
	},
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	err := rootCmd.Execute()
	current.reporter.Flush()
	if err != nil {
		ui.PrintError(os.Stderr, "Error", err)
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is ./.igsaved.yaml or ~/.config/igsaved/config.yaml)")
	flags.StringVar(&sessionID, "session-id", "", "Instagram sessionid cookie (prefer 'igsaved auth login')")
	flags.StringVarP(&profile, "profile", "p", "", "stored credential profile to use")
	flags.StringVarP(&outputDir, "output", "o", "", "output directory for downloads")
	flags.StringVar(&ledgerFile, "ledger", "", "path of the downloaded posts ledger")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print a line per post instead of a progress bar")

	rootCmd.SetVersionTemplate(`igsaved {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setup loads the configuration and builds the logger and error reporter
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	reporter, err := telemetry.Init(cfg.Telemetry, version)
	if err != nil {
		log.WithError(err).Warn("error reporting disabled")
		reporter = telemetry.Nop{}
	}

	current.cfg = cfg
	current.log = log
	current.reporter = reporter

	log.DebugWithFields("configuration loaded", map[string]interface{}{
		"command": cmd.CommandPath(),
		"output":  cfg.Output.Directory,
		"ledger":  cfg.Output.LedgerFile,
	})
	return nil
}

// flagOverrides collects the flags the user set explicitly, keyed the way
// config.MergeCommandLineFlags expects
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := make(map[string]interface{})
	fs := cmd.Flags()

	for _, name := range []string{"session-id", "output", "ledger", "log-level", "log-file", "archive", "collection"} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			overrides[name] = f.Value.String()
		}
	}
	for _, name := range []string{"limit", "checkpoint-every"} {
		if fs.Changed(name) {
			if v, err := fs.GetInt(name); err == nil {
				overrides[name] = v
			}
		}
	}
	if fs.Changed("interval") {
		if v, err := fs.GetDuration("interval"); err == nil {
			overrides["interval"] = v
		}
	}
	return overrides
}
