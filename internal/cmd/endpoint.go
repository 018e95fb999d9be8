package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/output"
	"golang.org/x/sync/errgroup"
)

var (
	// Endpoint update flags
	endpointDisplayName    string
	endpointDescription    string
	endpointOrganization   string
	endpointDepartment     string
	endpointKeywords       []string
	endpointContactEmail   string
	endpointSubscriptionID string
	endpointNetworkUse     string
	endpointMaxConcurrency int
	endpointPublic         bool
	endpointData           string
)

// endpointCmd represents the endpoint command
var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage the endpoint document",
	Long: `Inspect and update the endpoint document of a GCS deployment.

The endpoint document describes the deployment as a whole: its display
name, owning organization, subscription and network tuning. There is
exactly one per deployment.`,
}

var endpointShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the endpoint document",
	Annotations: map[string]string{"route": "GET /endpoint"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		resp, err := client.GetEndpoint(context.Background())
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

var endpointUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the endpoint document",
	Long: `Update fields of the endpoint document.

Fields can be given individually via flags, or wholesale via --data with a
JSON document (a string, @file, or - for stdin). Only the fields present in
the update are touched.

Examples:
  # Rename the endpoint
  gcs endpoint update --display-name "Physics Lab Cluster"

  # Attach a subscription
  gcs endpoint update --subscription-id 5d2bc458-4482-4de6-93eb-85f905e017c0

  # Update from a prepared document
  gcs endpoint update --data @endpoint.json`,
	Annotations: map[string]string{"route": "PUT /endpoint"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		doc := &gcs.EndpointDocument{}
		if cmd.Flags().Changed("data") {
			if err := parseJSONData(cmd, endpointData, doc); err != nil {
				return err
			}
		}

		// Individual flags override document fields
		if cmd.Flags().Changed("display-name") {
			doc.DisplayName = endpointDisplayName
		}
		if cmd.Flags().Changed("description") {
			doc.Description = endpointDescription
		}
		if cmd.Flags().Changed("organization") {
			doc.Organization = endpointOrganization
		}
		if cmd.Flags().Changed("department") {
			doc.Department = endpointDepartment
		}
		if cmd.Flags().Changed("keywords") {
			doc.Keywords = endpointKeywords
		}
		if cmd.Flags().Changed("contact-email") {
			doc.ContactEmail = endpointContactEmail
		}
		if cmd.Flags().Changed("subscription-id") {
			doc.SubscriptionID = endpointSubscriptionID
		}
		if cmd.Flags().Changed("network-use") {
			doc.NetworkUse = endpointNetworkUse
		}
		if cmd.Flags().Changed("max-concurrency") {
			doc.MaxConcurrency = gcs.Int(endpointMaxConcurrency)
		}
		if cmd.Flags().Changed("public") {
			doc.Public = gcs.Bool(endpointPublic)
		}

		// Ask for the updated document back so there is something to show
		opts := &gcs.UpdateEndpointOptions{Include: []string{"endpoint"}}
		resp, err := client.UpdateEndpoint(context.Background(), doc, opts)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Endpoint updated successfully")
		record, err := dataRecord(resp)
		if err != nil {
			return err
		}
		return output.PrintRecord(cmd.OutOrStdout(), record, nil)
	},
}

var endpointStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize deployment status",
	Long: `Summarize the status of a GCS deployment.

Fetches the API info, the endpoint document and the collection and storage
gateway counts concurrently, and prints a one-screen summary.

Exit codes:
  0 - Deployment is reachable
  1 - Deployment is unreachable or a probe failed`,
	Annotations: map[string]string{"route": "GET /info /endpoint /collections /storage_gateways"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		var (
			info        *gcs.UnpackingResponse
			endpoint    *gcs.UnpackingResponse
			collections int
			gateways    int
		)

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			info, err = client.GetInfo(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			endpoint, err = client.GetEndpoint(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			collections, err = countItems(ctx, client.CollectionsPager(nil))
			return err
		})
		g.Go(func() error {
			var err error
			gateways, err = countItems(ctx, client.StorageGatewaysPager(nil))
			return err
		})
		if err := g.Wait(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(1)
		}

		if outputFormat == "json" {
			status := map[string]interface{}{
				"reachable":        true,
				"endpoint_id":      stringField(endpoint, "id"),
				"display_name":     stringField(endpoint, "display_name"),
				"manager_version":  stringField(info, "manager_version"),
				"gcs_manager_url":  stringField(endpoint, "gcs_manager_url"),
				"collections":      collections,
				"storage_gateways": gateways,
			}
			raw, err := json.Marshal(status)
			if err != nil {
				return err
			}
			return output.PrintRawJSON(cmd.OutOrStdout(), raw, compactJSON)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status:            %s\n", color.GreenString("reachable"))
		fmt.Fprintf(out, "Endpoint:          %s (%s)\n", stringField(endpoint, "display_name"), stringField(endpoint, "id"))
		fmt.Fprintf(out, "Manager version:   %s\n", stringField(info, "manager_version"))
		fmt.Fprintf(out, "GCS Manager URL:   %s\n", stringField(endpoint, "gcs_manager_url"))
		fmt.Fprintf(out, "Collections:       %d\n", collections)
		fmt.Fprintf(out, "Storage gateways:  %d\n", gateways)

		return nil
	},
}

// countItems drains a pager and reports how many documents it yielded.
func countItems(ctx context.Context, pager *gcs.Pager) (int, error) {
	count := 0
	for _, err := range pager.Items(ctx) {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// stringField returns the string under key in the response's data view, or
// "" when absent or not a string.
func stringField(resp *gcs.UnpackingResponse, key string) string {
	if v, ok := resp.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(endpointCmd)
	endpointCmd.AddCommand(endpointShowCmd)
	endpointCmd.AddCommand(endpointUpdateCmd)
	endpointCmd.AddCommand(endpointStatusCmd)

	endpointUpdateCmd.Flags().StringVar(&endpointDisplayName, "display-name", "", "Endpoint display name")
	endpointUpdateCmd.Flags().StringVar(&endpointDescription, "description", "", "Endpoint description")
	endpointUpdateCmd.Flags().StringVar(&endpointOrganization, "organization", "", "Owning organization")
	endpointUpdateCmd.Flags().StringVar(&endpointDepartment, "department", "", "Owning department")
	endpointUpdateCmd.Flags().StringSliceVar(&endpointKeywords, "keywords", nil, "Search keywords (comma-separated)")
	endpointUpdateCmd.Flags().StringVar(&endpointContactEmail, "contact-email", "", "Support contact email")
	endpointUpdateCmd.Flags().StringVar(&endpointSubscriptionID, "subscription-id", "", "Globus subscription ID")
	endpointUpdateCmd.Flags().StringVar(&endpointNetworkUse, "network-use", "", "Network use profile: normal, minimal, aggressive or custom")
	endpointUpdateCmd.Flags().IntVar(&endpointMaxConcurrency, "max-concurrency", 0, "Max concurrent transfers (network-use custom)")
	endpointUpdateCmd.Flags().BoolVar(&endpointPublic, "public", false, "List the endpoint publicly")
	endpointUpdateCmd.Flags().StringVar(&endpointData, "data", "", "JSON endpoint document (string, @file, or - for stdin)")
}
