package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/output"
)

var (
	// Storage gateway list flags
	gatewaysInclude  []string
	gatewaysPageSize int
	gatewaysMarker   string
	gatewaysAll      bool
	// Storage gateway create flags
	gatewayDisplayName   string
	gatewayConnectorID   string
	gatewayHighAssurance bool
	gatewayRequireMFA    bool
	gatewayDomains       []string
	gatewayAuthTimeout   int
	gatewayData          string
	// Delete confirmation flag
	gatewaysDeleteForce bool
)

// gatewayColumns are the table columns for storage gateway listings.
var gatewayColumns = []output.Column{
	{Header: "ID", Key: "id"},
	{Header: "Display Name", Key: "display_name"},
	{Header: "Connector", Key: "connector_id"},
	{Header: "High Assurance", Key: "high_assurance"},
}

// storageGatewaysCmd represents the storage-gateways command
var storageGatewaysCmd = &cobra.Command{
	Use:   "storage-gateways",
	Short: "Manage storage gateways",
	Long: `Manage the storage gateways of a GCS deployment.

A storage gateway describes how the endpoint reaches one storage system
(POSIX, S3, Ceph, ...) and which local accounts and domains may use it.
Collections are created on top of storage gateways.`,
}

var storageGatewaysListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List storage gateways",
	Annotations: map[string]string{"route": "GET /storage_gateways"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		opts := &gcs.ListStorageGatewaysOptions{
			Include:  gatewaysInclude,
			Marker:   gatewaysMarker,
			PageSize: gatewaysPageSize,
		}
		ctx := context.Background()

		if gatewaysAll {
			records, err := drainItems(client.StorageGatewaysPager(opts).Items(ctx))
			if err != nil {
				return err
			}
			return printRecordList(cmd, records, gatewayColumns)
		}

		resp, err := client.ListStorageGateways(ctx, opts)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		if err := output.PrintRecords(cmd.OutOrStdout(), collectRecords(resp.Items()), gatewayColumns); err != nil {
			return err
		}
		if marker := gcs.NextMarker(resp); marker != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nMore results available: rerun with --marker %s (or --all)\n", marker)
		}
		return nil
	},
}

var storageGatewaysShowCmd = &cobra.Command{
	Use:         "show <storage-gateway-id>",
	Short:       "Show a storage gateway",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "GET /storage_gateways/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "storage gateway ID"); err != nil {
			return err
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		resp, err := client.GetStorageGateway(context.Background(), args[0], gatewaysInclude...)
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

var storageGatewaysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a storage gateway",
	Long: `Create a storage gateway.

The connector ID names the storage system type; each GCS release
documents the connectors it ships. The full document can also be given
via --data (a string, @file, or - for stdin); flags then override its
fields.

Examples:
  # POSIX gateway for campus accounts
  gcs storage-gateways create --display-name "Cluster Scratch" \
    --connector-id 145812c8-decc-41f1-83cf-bb2a85a2a70b \
    --domains example.edu

  # High assurance gateway from a prepared document
  gcs storage-gateways create --data @gateway.json`,
	Annotations: map[string]string{"route": "POST /storage_gateways"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		doc := &gcs.StorageGatewayDocument{}
		if cmd.Flags().Changed("data") {
			if err := parseJSONData(cmd, gatewayData, doc); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("display-name") {
			doc.DisplayName = gatewayDisplayName
		}
		if cmd.Flags().Changed("connector-id") {
			doc.ConnectorID = gatewayConnectorID
		}
		if cmd.Flags().Changed("high-assurance") {
			doc.HighAssurance = gcs.Bool(gatewayHighAssurance)
		}
		if cmd.Flags().Changed("require-mfa") {
			doc.RequireMFA = gcs.Bool(gatewayRequireMFA)
		}
		if cmd.Flags().Changed("domains") {
			doc.AllowedDomains = gatewayDomains
		}
		if cmd.Flags().Changed("authentication-timeout-mins") {
			doc.AuthenticationTimeoutMins = gcs.Int(gatewayAuthTimeout)
		}

		resp, err := client.CreateStorageGateway(context.Background(), doc)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		id, _ := resp.Get("id")
		fmt.Fprintf(cmd.ErrOrStderr(), "Storage gateway created successfully: %v\n", id)
		return nil
	},
}

var storageGatewaysDeleteCmd = &cobra.Command{
	Use:   "delete <storage-gateway-id>",
	Short: "Delete a storage gateway",
	Long: `Delete a storage gateway.

The gateway must have no collections left on it; delete those first.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "DELETE /storage_gateways/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "storage gateway ID"); err != nil {
			return err
		}

		// Confirm deletion unless --force is used
		if !gatewaysDeleteForce {
			if !confirmDeletion(cmd, "storage gateway", args[0]) {
				return nil
			}
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		if _, err := client.DeleteStorageGateway(context.Background(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Storage gateway deleted successfully: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageGatewaysCmd)
	storageGatewaysCmd.AddCommand(storageGatewaysListCmd)
	storageGatewaysCmd.AddCommand(storageGatewaysShowCmd)
	storageGatewaysCmd.AddCommand(storageGatewaysCreateCmd)
	storageGatewaysCmd.AddCommand(storageGatewaysDeleteCmd)

	// Dynamic completion for storage gateway ID arguments
	storageGatewaysShowCmd.ValidArgsFunction = completeStorageGatewayIDs
	storageGatewaysDeleteCmd.ValidArgsFunction = completeStorageGatewayIDs

	storageGatewaysListCmd.Flags().StringSliceVar(&gatewaysInclude, "include", nil, "Extra document fields to include")
	storageGatewaysListCmd.Flags().IntVar(&gatewaysPageSize, "page-size", 0, "Documents per page (0 = server default)")
	storageGatewaysListCmd.Flags().StringVar(&gatewaysMarker, "marker", "", "Resume a paged listing from this marker")
	storageGatewaysListCmd.Flags().BoolVar(&gatewaysAll, "all", false, "Fetch all pages")

	storageGatewaysShowCmd.Flags().StringSliceVar(&gatewaysInclude, "include", nil, "Extra document fields to include (e.g. private_policies, accounts)")

	storageGatewaysCreateCmd.Flags().StringVar(&gatewayDisplayName, "display-name", "", "Storage gateway display name")
	storageGatewaysCreateCmd.Flags().StringVar(&gatewayConnectorID, "connector-id", "", "Connector ID of the storage system type")
	storageGatewaysCreateCmd.Flags().BoolVar(&gatewayHighAssurance, "high-assurance", false, "Enforce high assurance policies")
	storageGatewaysCreateCmd.Flags().BoolVar(&gatewayRequireMFA, "require-mfa", false, "Require multi-factor authentication (high assurance only)")
	storageGatewaysCreateCmd.Flags().StringSliceVar(&gatewayDomains, "domains", nil, "Allowed identity domains (comma-separated)")
	storageGatewaysCreateCmd.Flags().IntVar(&gatewayAuthTimeout, "authentication-timeout-mins", 0, "Re-authentication interval in minutes")
	storageGatewaysCreateCmd.Flags().StringVar(&gatewayData, "data", "", "JSON storage gateway document (string, @file, or - for stdin)")

	storageGatewaysDeleteCmd.Flags().BoolVarP(&gatewaysDeleteForce, "force", "f", false, "Skip confirmation prompt")
}
