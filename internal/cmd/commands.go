package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var (
	// commandsShowRoutes shows the GCS Manager API route for each command
	commandsShowRoutes bool
)

// commandEntry is one row of the command tree listing
type commandEntry struct {
	prefix  string
	branch  string
	cmdPath string
	short   string
	route   string
}

// commandsCmd shows all available commands
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all available commands",
	Long: `Display the complete command tree in an easy-to-read format.

Use --routes to also display the GCS Manager API route each command
talks to.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Available commands:")
		fmt.Fprintln(w)

		printCommandEntries(w, collectCommandEntries(rootCmd, "", true), commandsShowRoutes)
	},
}

// collectCommandEntries recursively collects the visible command tree
func collectCommandEntries(cmd *cobra.Command, prefix string, isRoot bool) []commandEntry {
	var entries []commandEntry

	visible := filterVisibleCommands(cmd.Commands())
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].Name() < visible[j].Name()
	})

	for i, c := range visible {
		isLast := i == len(visible)-1

		entry := commandEntry{
			prefix:  prefix,
			branch:  getBranchPrefix(isRoot, isLast),
			cmdPath: getFullCommandPath(c),
			short:   c.Short,
			route:   c.Annotations["route"],
		}
		entries = append(entries, entry)

		if c.HasSubCommands() {
			entries = append(entries, collectCommandEntries(c, getChildPrefix(prefix, isRoot, isLast), false)...)
		}
	}

	return entries
}

// printCommandEntries prints the tree, right-aligning routes when asked.
// Width math counts runes, not bytes, so the box-drawing prefixes line up.
func printCommandEntries(w io.Writer, entries []commandEntry, withRoutes bool) {
	maxWidth := 0
	maxVerbLen := 0
	if withRoutes {
		for _, e := range entries {
			width := displayWidth(e.prefix) + displayWidth(e.branch) + displayWidth(e.cmdPath)
			if e.short != "" {
				width += 3 + displayWidth(e.short)
			}
			if width > maxWidth {
				maxWidth = width
			}
			if verb, _, ok := strings.Cut(e.route, " "); ok && len(verb) > maxVerbLen {
				maxVerbLen = len(verb)
			}
		}
	}

	for _, e := range entries {
		left := e.prefix + e.branch + e.cmdPath
		if e.short != "" {
			left += " - " + e.short
		}

		if withRoutes && e.route != "" {
			padding := maxWidth - displayWidth(left) + 2
			fmt.Fprintf(w, "%s%s[%s]\n", left, strings.Repeat(" ", padding), formatRoute(e.route, maxVerbLen))
		} else {
			fmt.Fprintln(w, left)
		}
	}
}

// displayWidth returns the rune count of a string
func displayWidth(s string) int {
	return utf8.RuneCountInString(s)
}

// formatRoute pads the HTTP verb so paths line up in a column
func formatRoute(route string, maxVerbLen int) string {
	verb, path, ok := strings.Cut(route, " ")
	if !ok {
		return route
	}
	return fmt.Sprintf("%-*s %s", maxVerbLen, verb, path)
}

// filterVisibleCommands returns commands excluding help and completion
func filterVisibleCommands(commands []*cobra.Command) []*cobra.Command {
	var visible []*cobra.Command
	for _, c := range commands {
		if c.Name() != "help" && c.Name() != "completion" {
			visible = append(visible, c)
		}
	}
	return visible
}

// getBranchPrefix returns the tree branch character based on position
func getBranchPrefix(isRoot, isLast bool) string {
	if isRoot {
		return ""
	}
	if isLast {
		return "└── "
	}
	return "├── "
}

// getChildPrefix returns the prefix for child commands
func getChildPrefix(prefix string, isRoot, isLast bool) string {
	if isRoot {
		return "  "
	}
	if isLast {
		return prefix + "    "
	}
	return prefix + "│   "
}

// getFullCommandPath returns the command name with its argument placeholders
func getFullCommandPath(cmd *cobra.Command) string {
	parts := []string{}

	current := cmd
	for current != nil && current.Name() != "gcs" {
		name := current.Name()

		// Keep argument placeholders from Use
		useParts := strings.Fields(current.Use)
		if len(useParts) > 1 {
			name = strings.Join(useParts, " ")
		}

		parts = append([]string{name}, parts...)
		current = current.Parent()
	}

	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().BoolVarP(&commandsShowRoutes, "routes", "r", false, "Show the API route for each command")
}
