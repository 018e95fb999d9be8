package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsTree(t *testing.T) {
	stdout, _, err := runCommand(t, commandsCmd, "", "commands")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Available commands:")

	// Top-level groups with their short descriptions
	assert.Contains(t, stdout, "collections - Manage collections")
	assert.Contains(t, stdout, "storage-gateways - Manage storage gateways")
	assert.Contains(t, stdout, "roles - Manage roles")
	assert.Contains(t, stdout, "session - Manage saved bearer tokens")

	// Subcommands are indented tree branches with argument placeholders
	assert.Contains(t, stdout, "├── ")
	assert.Contains(t, stdout, "└── ")
	assert.Contains(t, stdout, "collections show <collection-id> - Show a collection")
	assert.Contains(t, stdout, "session set-token [token]")
}

func TestCommandsTree_Routes(t *testing.T) {
	stdout, _, err := runCommand(t, commandsCmd, "", "commands", "--routes")

	require.NoError(t, err)
	// Verbs pad to the longest one (DELETE) so paths line up
	assert.Contains(t, stdout, "[GET    /collections]")
	assert.Contains(t, stdout, "[POST   /collections]")
	assert.Contains(t, stdout, "[DELETE /collections/{id}]")
	assert.Contains(t, stdout, "[PUT    /endpoint]")
	assert.Contains(t, stdout, "[GET    /storage_gateways]")
	assert.Contains(t, stdout, "[POST   /roles]")
}

func TestCommandsTree_HidesHelpAndCompletion(t *testing.T) {
	stdout, _, err := runCommand(t, commandsCmd, "", "commands")

	require.NoError(t, err)
	assert.NotContains(t, stdout, "Generate shell completion script")
	assert.NotContains(t, stdout, "help [command]")
}

func TestGetFullCommandPath(t *testing.T) {
	root := &cobra.Command{Use: "gcs"}
	group := &cobra.Command{Use: "things"}
	show := &cobra.Command{Use: "show <thing-id>"}
	root.AddCommand(group)
	group.AddCommand(show)

	assert.Equal(t, "things", getFullCommandPath(group))
	assert.Equal(t, "things show <thing-id>", getFullCommandPath(show))
}

func TestGetBranchPrefix(t *testing.T) {
	assert.Equal(t, "", getBranchPrefix(true, false))
	assert.Equal(t, "", getBranchPrefix(true, true))
	assert.Equal(t, "├── ", getBranchPrefix(false, false))
	assert.Equal(t, "└── ", getBranchPrefix(false, true))
}

func TestGetChildPrefix(t *testing.T) {
	assert.Equal(t, "  ", getChildPrefix("", true, false))
	assert.Equal(t, "  │   ", getChildPrefix("  ", false, false))
	assert.Equal(t, "      ", getChildPrefix("  ", false, true))
}

func TestFormatRoute(t *testing.T) {
	assert.Equal(t, "GET    /collections", formatRoute("GET /collections", 6))
	assert.Equal(t, "DELETE /collections/{id}", formatRoute("DELETE /collections/{id}", 6))
	assert.Equal(t, "no-verb-route", formatRoute("no-verb-route", 6))
}

func TestDisplayWidth_CountsRunes(t *testing.T) {
	assert.Equal(t, 4, displayWidth("└── "))
	assert.Equal(t, 5, displayWidth("hello"))
}
