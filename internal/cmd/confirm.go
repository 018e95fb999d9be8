package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// confirmDeletion prompts before a destructive operation and reports whether
// the user typed 'y'. The prompt goes through cmd.OutOrStdout() and
// cmd.InOrStdin() so tests can script it; EOF on a closed stdin counts as a
// refusal.
func confirmDeletion(cmd *cobra.Command, resourceType, resourceName string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "Delete %s '%s'? (y/N): ", resourceType, resourceName)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		fmt.Fprintf(cmd.OutOrStdout(), "Failed to read input: %v\n", err)
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))

	if response != "y" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return false
	}
	return true
}
