// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for trnanalysis.

Pipeline names on the search path complete after "trnanalysis".

Install instructions:
  Bash:       trnanalysis completion bash > /etc/bash_completion.d/trnanalysis
              echo 'source <(trnanalysis completion bash)' >> ~/.bashrc
  Zsh:        trnanalysis completion zsh > ~/.zsh/completions/_trnanalysis
  Fish:       trnanalysis completion fish > ~/.config/fish/completions/trnanalysis.fish
  PowerShell: trnanalysis completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				fmt.Fprintln(out, "# trnanalysis bash completion")
				fmt.Fprintln(out, "# Install: trnanalysis completion bash > /etc/bash_completion.d/trnanalysis")
				fmt.Fprintln(out)
				return rootCmd.GenBashCompletionV2(out, true)
			case "zsh":
				fmt.Fprintln(out, "# trnanalysis zsh completion")
				fmt.Fprintln(out, "# Install: trnanalysis completion zsh > ~/.zsh/completions/_trnanalysis")
				fmt.Fprintln(out)
				return rootCmd.GenZshCompletion(out)
			case "fish":
				fmt.Fprintln(out, "# trnanalysis fish completion")
				fmt.Fprintln(out, "# Install: trnanalysis completion fish > ~/.config/fish/completions/trnanalysis.fish")
				fmt.Fprintln(out)
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				fmt.Fprintln(out, "# trnanalysis PowerShell completion")
				fmt.Fprintln(out, "# Install: trnanalysis completion powershell >> $PROFILE")
				fmt.Fprintln(out)
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
