package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for the GCS CLI.

To load completions:

Bash:

  # To test the completion once without permanently installing it:
  $ source <(gcs completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ gcs completion bash > /etc/bash_completion.d/gcs
  # macOS:
  $ gcs completion bash > $(brew --prefix)/etc/bash_completion.d/gcs

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gcs completion zsh > "${fpath[1]}/_gcs"

  # You will need to start a new shell for this setup to take effect.

  # To test the completion once without permanently installing it:
  $ source <(gcs completion zsh)

Fish:

  # To test the completion once without permanently installing it:
  $ gcs completion fish | source

  # To load completions for each session, execute once:
  $ gcs completion fish > ~/.config/fish/completions/gcs.fish

PowerShell:

  # To test the completion once without permanently installing it:
  PS> gcs completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> gcs completion powershell > gcs.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactValidArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
