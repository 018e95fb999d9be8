package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/output"
)

var (
	// Role list flags
	rolesCollectionID string
	rolesAllRoles     bool
	// Role create flags
	roleCollectionID string
	rolePrincipal    string
	roleName         string
	roleData         string
	// Delete confirmation flag
	rolesDeleteForce bool
)

// roleColumns are the table columns for role listings.
var roleColumns = []output.Column{
	{Header: "ID", Key: "id"},
	{Header: "Role", Key: "role"},
	{Header: "Principal", Key: "principal"},
	{Header: "Collection", Key: "collection"},
}

// rolesCmd represents the roles command
var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles",
	Long: `Manage the roles of a GCS deployment.

A role grants a Globus Auth identity or group a capability on the
endpoint or on one collection: owner, administrator, activity_manager,
activity_monitor, access_manager or access_monitor. Principals are Auth
URNs, e.g. urn:globus:auth:identity:<uuid>.`,
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	Long: `List roles on the endpoint, or on one collection with
--collection-id. By default only the caller's own roles are shown;
--all-roles lists everyone's (requires an administrator role).`,
	Annotations: map[string]string{"route": "GET /roles"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if rolesCollectionID != "" {
			if err := requireUUID(rolesCollectionID, "collection ID"); err != nil {
				return err
			}
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		resp, err := client.ListRoles(context.Background(), &gcs.ListRolesOptions{
			CollectionID:    rolesCollectionID,
			IncludeAllRoles: rolesAllRoles,
		})
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		return output.PrintRecords(cmd.OutOrStdout(), collectRecords(resp.Items()), roleColumns)
	},
}

var rolesShowCmd = &cobra.Command{
	Use:         "show <role-id>",
	Short:       "Show a role",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "GET /roles/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "role ID"); err != nil {
			return err
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		resp, err := client.GetRole(context.Background(), args[0])
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		record, err := dataRecord(resp)
		if err != nil {
			return err
		}
		return output.PrintRecord(cmd.OutOrStdout(), record, nil)
	},
}

var rolesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Grant a role",
	Long: `Grant a role to a principal.

Without --collection-id the role applies to the whole endpoint.

Examples:
  # Make an identity an endpoint administrator
  gcs roles create --role administrator \
    --principal urn:globus:auth:identity:ae341a98-d274-11e5-b888-dbae3a8ba545

  # Let a group manage permissions on one collection
  gcs roles create --role access_manager \
    --collection-id 8a5e84ce-1635-4c2a-9dba-fc4a4e8d1d02 \
    --principal urn:globus:groups:id:fdb38a24-03c1-11e3-86f7-12313809f035`,
	Annotations: map[string]string{"route": "POST /roles"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if roleCollectionID != "" {
			if err := requireUUID(roleCollectionID, "collection ID"); err != nil {
				return err
			}
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		doc := &gcs.RoleDocument{}
		if cmd.Flags().Changed("data") {
			if err := parseJSONData(cmd, roleData, doc); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("collection-id") {
			doc.Collection = roleCollectionID
		}
		if cmd.Flags().Changed("principal") {
			doc.Principal = rolePrincipal
		}
		if cmd.Flags().Changed("role") {
			doc.Role = roleName
		}

		resp, err := client.CreateRole(context.Background(), doc)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		id, _ := resp.Get("id")
		fmt.Fprintf(cmd.ErrOrStderr(), "Role created successfully: %v\n", id)
		return nil
	},
}

var rolesDeleteCmd = &cobra.Command{
	Use:   "delete <role-id>",
	Short: "Revoke a role",
	Long: `Revoke a role.

The principal keeps any other roles it holds.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "DELETE /roles/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "role ID"); err != nil {
			return err
		}

		// Confirm deletion unless --force is used
		if !rolesDeleteForce {
			if !confirmDeletion(cmd, "role", args[0]) {
				return nil
			}
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		if _, err := client.DeleteRole(context.Background(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Role deleted successfully: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesShowCmd)
	rolesCmd.AddCommand(rolesCreateCmd)
	rolesCmd.AddCommand(rolesDeleteCmd)

	rolesListCmd.Flags().StringVar(&rolesCollectionID, "collection-id", "", "List roles on this collection instead of the endpoint")
	rolesListCmd.Flags().BoolVar(&rolesAllRoles, "all-roles", false, "List all roles, not just the caller's (admin only)")

	rolesCreateCmd.Flags().StringVar(&roleCollectionID, "collection-id", "", "Grant the role on this collection instead of the endpoint")
	rolesCreateCmd.Flags().StringVar(&rolePrincipal, "principal", "", "Globus Auth URN of the identity or group")
	rolesCreateCmd.Flags().StringVar(&roleName, "role", "", "Role to grant (e.g. administrator, access_manager)")
	rolesCreateCmd.Flags().StringVar(&roleData, "data", "", "JSON role document (string, @file, or - for stdin)")

	rolesDeleteCmd.Flags().BoolVarP(&rolesDeleteForce, "force", "f", false, "Skip confirmation prompt")
}
