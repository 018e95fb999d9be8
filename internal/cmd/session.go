package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/output"
)

var (
	sessionSaveName string
	sessionClearAll bool
)

// sessionColumns are the table columns for the session listing.
var sessionColumns = []output.Column{
	{Header: "Name", Key: "name"},
	{Header: "URL", Key: "url"},
	{Header: "Created", Key: "created_at"},
	{Header: "Age", Key: "age"},
	{Header: "Status", Key: "status"},
}

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved bearer tokens",
	Long: `Manage saved bearer tokens.

GCS Manager tokens come from Globus Auth out of band (globus-cli, a web
flow, or a service credential). A session remembers one token together
with the endpoint it belongs to, so commands work without --token.

The session named 'default' is used automatically whenever no token is
given via flag or environment.

Examples:
  # Save a token for the configured endpoint (prompts without echo)
  gcs session set-token --url https://gcs.example.org

  # Keep a second deployment under its own name
  gcs session set-token --url https://gcs.staging.example.org --name staging
  gcs info --session staging

  # Inspect and clean up
  gcs session show
  gcs session clear staging`,
}

// sessionSetTokenCmd saves a bearer token as a named session
var sessionSetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Save a bearer token for the configured endpoint",
	Long: `Save a bearer token as a session.

The token can be passed as an argument, via --token, or interactively:
when omitted, the command prompts for it without echoing. The token is
verified against the GCS Manager before it is saved.

The endpoint URL comes from --url, GCS_BASE_URL or the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// This command resolves config itself: the root skips config
		// loading for session subcommands.
		config, err := gcs.LoadConfig()
		if err != nil {
			config = &gcs.Config{Timeout: 30}
		}
		config.MergeWithFlags(gcs.FlagValues{
			BaseURL:            baseURL,
			Timeout:            timeout,
			InsecureSkipVerify: insecureSkipVerify,
		})

		if config.BaseURL == "" {
			return fmt.Errorf(errmsg.MsgBaseURLRequired)
		}

		// Token precedence: positional arg, --token flag, prompt
		token := accessToken
		if len(args) == 1 {
			token = args[0]
		}
		if token == "" {
			token, err = promptForToken(cmd)
			if err != nil {
				return err
			}
		}
		if token == "" {
			return fmt.Errorf("token cannot be empty")
		}

		// Verify the token before saving it
		fmt.Fprintf(os.Stderr, "Verifying token against %s...\n", config.BaseURL)
		config.AccessToken = token

		client, err := gcs.NewClient(config)
		if err != nil {
			return err
		}
		resp, err := client.GetEndpoint(context.Background())
		if err != nil {
			return fmt.Errorf("token verification failed: %w", err)
		}

		name := sessionSaveName
		if name == "" {
			name = defaultSessionName
		}

		sessions, err := gcs.LoadSessions()
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}

		sessions.AddSession(name, &gcs.Session{
			URL:         config.BaseURL,
			AccessToken: token,
			CreatedAt:   time.Now(),
		})

		if err := sessions.Save(); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✅ Token saved for endpoint: %s\n", stringField(resp, "display_name"))
		fmt.Fprintf(os.Stderr, "   Session saved as: %s\n", name)
		if name != defaultSessionName {
			fmt.Fprintf(os.Stderr, "   Select it with: gcs --session %s <command>\n", name)
		}

		return nil
	},
}

// sessionShowCmd lists the saved sessions
var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := gcs.LoadSessions()
		if err != nil {
			return err
		}

		if len(sessions.Sessions) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), errmsg.MsgNoSavedSessions)
			return nil
		}

		names := make([]string, 0, len(sessions.Sessions))
		for name := range sessions.Sessions {
			names = append(names, name)
		}
		sort.Strings(names)

		var records []map[string]interface{}
		for _, name := range names {
			session := sessions.Sessions[name]

			status := color.GreenString("valid")
			if session.IsTokenExpired(0) {
				status = color.RedString("expired")
			}

			records = append(records, map[string]interface{}{
				"name":       name,
				"url":        session.URL,
				"created_at": session.CreatedAt.Format("2006-01-02 15:04:05"),
				"age":        formatAge(time.Since(session.CreatedAt)),
				"status":     status,
			})
		}

		return printRecordList(cmd, records, sessionColumns)
	},
}

// sessionClearCmd removes saved sessions
var sessionClearCmd = &cobra.Command{
	Use:   "clear [name]",
	Short: "Remove a saved session",
	Long: `Remove a saved session.

Without a name the 'default' session is removed; --all removes every
saved session. Tokens themselves are not revoked, only forgotten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := gcs.LoadSessions()
		if err != nil {
			return err
		}

		if sessionClearAll {
			count := len(sessions.Sessions)
			sessions.Sessions = make(map[string]*gcs.Session)
			if err := sessions.Save(); err != nil {
				return fmt.Errorf("%s: %w", errmsg.MsgFailedToSaveSessions, err)
			}
			fmt.Fprintf(os.Stderr, "✅ Cleared %d session(s)\n", count)
			return nil
		}

		name := defaultSessionName
		if len(args) == 1 {
			name = args[0]
		}

		if err := sessions.DeleteSession(name); err != nil {
			return err
		}
		if err := sessions.Save(); err != nil {
			return fmt.Errorf("%s: %w", errmsg.MsgFailedToSaveSessions, err)
		}

		fmt.Fprintf(os.Stderr, "✅ Cleared session: %s\n", name)
		return nil
	},
}

// promptForToken reads a token from the terminal without echo. When stdin
// is not a terminal (pipes, tests) it falls back to reading one line.
func promptForToken(cmd *cobra.Command) (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "Token: ")
		tokenBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr) // New line after token input
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(tokenBytes)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// formatAge formats a duration as a human-readable age
func formatAge(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	} else if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else {
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionSetTokenCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	sessionSetTokenCmd.Flags().StringVar(&sessionSaveName, "name", "", "Custom name for this session (default: default)")
	sessionClearCmd.Flags().BoolVar(&sessionClearAll, "all", false, "Remove all saved sessions")

	sessionClearCmd.ValidArgsFunction = completeSessionNames
}
