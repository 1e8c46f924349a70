package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"igsaved/pkg/auth"
	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/ui"
)

var (
	helpCookie bool
	noVerify   bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Instagram session",
	Long: `Manage the Instagram session used by igsaved.

The sessionid cookie is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables IGSAVED_SESSION_ID (read only)

Anyone holding the sessionid can act as you on Instagram. Never share it!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store your Instagram session securely",
	Long: `Prompt for the sessionid cookie, check it against Instagram and store it
in the system keychain or an encrypted file.

Use --profile to keep sessions of several accounts side by side.`,
	Example: `  # Show where to find the sessionid cookie
  igsaved auth login --help-cookie

  # Store the session for the default profile
  igsaved auth login

  # Store a second account
  igsaved auth login --profile work`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored sessions",
	Long:  `List stored sessions with the session ID masked.`,
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authStatusCmd)

	loginCmd.Flags().BoolVar(&helpCookie, "help-cookie", false, "show how to find the sessionid cookie and exit")
	loginCmd.Flags().BoolVar(&noVerify, "no-verify", false, "store the session without checking it against Instagram")
}

func runLogin(cmd *cobra.Command, args []string) error {
	out := current.out
	if helpCookie {
		auth.ShowSessionGuide(out)
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := profile
	if name == "" {
		name = auth.DefaultProfile
	}

	p := newPrompter(os.Stdin, out)
	if existing, _ := manager.Retrieve(name); existing != nil {
		if !p.confirm(fmt.Sprintf("\n⚠️  Profile '%s' already has a session. Replace it?", name)) {
			return nil
		}
	}

	auth.ShowQuickGuide(out)
	session, err := p.secret("🔑 sessionid cookie value: ")
	if err != nil {
		return fmt.Errorf("failed to read session ID: %w", err)
	}

	account := &auth.Account{
		Profile:      name,
		SessionID:    session,
		LastModified: time.Now(),
	}

	if !noVerify {
		fmt.Fprintln(out, "\n🔐 Checking the session with Instagram...")
		user, err := newClient(current.cfg, current.log).Login(cmd.Context(), session)
		if err != nil {
			return apperrors.Auth("session was rejected; copy a fresh sessionid and try again", err)
		}
		account.Username = user.Username
		ui.PrintSuccess(out, "✅ Logged in as @"+user.Username)
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess(out, fmt.Sprintf("\n🎉 Session saved for profile '%s'", name))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := profile
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = auth.DefaultProfile
	}

	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess(current.out, fmt.Sprintf("Removed session for profile '%s'", name))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	out := current.out
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning(out, "No stored sessions. Run 'igsaved auth login' to add one.")
		return nil
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Profile < accounts[j].Profile })
	for _, account := range accounts {
		safe := auth.SanitizeAccount(account)
		user := safe.Username
		if user == "" {
			user = "(not verified)"
		} else {
			user = "@" + user
		}
		ui.PrintInfo(out, safe.Profile, fmt.Sprintf("%s  session %s  updated %s",
			user, safe.SessionID, safe.LastModified.Local().Format("2006-01-02 15:04")))
	}
	return nil
}
