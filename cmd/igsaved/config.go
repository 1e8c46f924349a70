package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igsaved/pkg/auth"
	"igsaved/pkg/config"
	"igsaved/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igsaved configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (IGSAVED_*, also read from .env)
  - Configuration file
  - Default values`,
	// config subcommands handle broken configuration themselves
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is written to ~/.config/igsaved/config.yaml unless a different
path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging all sources. The session ID and
the Sentry DSN are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values, and
check that the output folders can be created.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

const exampleConfig = `# igsaved configuration file
#
# Every option can also be set with an environment variable prefixed with
# IGSAVED_, for example IGSAVED_OUTPUT_DIR or IGSAVED_LOG_LEVEL.

instagram:
  # sessionid cookie. Prefer 'igsaved auth login', which keeps it in the
  # system keychain instead of this file.
  session_id: ""

  # HTTP client settings
  user_agent: "Instagram 269.0.0.18.75 Android (26/8.0.0; 480dpi; 1080x1920; OnePlus; 6T Dev; devitron; qcom; en_US; 314665256)"
  base_url: "https://i.instagram.com"
  timeout: 30s

# Request pacing. Requests are spread out, never retried.
rate_limit:
  requests_per_minute: 30
  burst_size: 3

output:
  # Root of photos/, videos/, albums/ and metadata/
  directory: "downloads"

  # IDs of posts already exported
  ledger_file: "data/downloaded.json"

  # Archive written next to the output directory after a run:
  # full, metadata or none
  archive_mode: "full"

download:
  # Collection ID to export; empty means all saved posts
  collection: ""

  # Maximum number of posts to list; 0 means all
  limit: 0

  # Save the ledger after every N downloaded posts; 0 saves once at the end
  checkpoint_every: 0

notifications:
  enabled: false
  # terminal, desktop or none
  notification_type: "terminal"

logging:
  # debug, info, warn, error
  level: "info"
  # console or json
  format: "console"
  # Optional log file
  file: ""

telemetry:
  # Optional Sentry DSN for failure reports
  sentry_dsn: ""
  environment: "production"

watch:
  # Time between runs of 'igsaved watch'
  interval: 6h
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := current.out
	configPath := configFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess(out, "Configuration file created: "+configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Run 'igsaved auth login' to store your session")
	fmt.Fprintln(out, "2. Run 'igsaved config validate' to check the configuration")
	fmt.Fprintln(out, "3. Start exporting with 'igsaved'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := current.out
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		return err
	}

	display := *cfg
	if display.Instagram.SessionID != "" {
		display.Instagram.SessionID = auth.MaskString(display.Instagram.SessionID)
	}
	if display.Telemetry.SentryDSN != "" {
		display.Telemetry.SentryDSN = auth.MaskString(display.Telemetry.SentryDSN)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight(out, "Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	fmt.Fprintf(out, "\nConfiguration file: %s\n", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := current.out
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return fmt.Errorf("no configuration file found; specify one with --config")
	}

	ui.PrintInfo(out, "Validating configuration", path)

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		ui.PrintError(out, "Configuration has errors:")
		fmt.Fprintf(out, "%v\n", err)
		return fmt.Errorf("invalid configuration: %s", path)
	}

	var problems []string
	for _, dir := range []string{cfg.Output.Directory, filepath.Dir(cfg.Output.LedgerFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create %s: %v", dir, err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	if len(problems) > 0 {
		ui.PrintError(out, "Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("invalid configuration: %s", path)
	}

	if cfg.Instagram.SessionID != "" {
		ui.PrintWarning(out, "⚠️  session_id is stored in plain text; consider 'igsaved auth login'")
	}

	ui.PrintSuccess(out, "Configuration is valid")
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Output directory: %s\n", cfg.Output.Directory)
	fmt.Fprintf(out, "  Ledger file: %s\n", cfg.Output.LedgerFile)
	fmt.Fprintf(out, "  Archive mode: %s\n", cfg.Output.ArchiveMode)
	fmt.Fprintf(out, "  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
