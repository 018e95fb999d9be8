package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/output"
)

// infoKeys are the document fields the table view shows, in order.
var infoKeys = []string{"api_version", "manager_version", "endpoint_id", "domain_name", "client_id"}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show GCS Manager API information",
	Long: `Show version and identity information for the GCS Manager API.

This route requires no authentication, which makes it a quick way to verify
that a deployment is reachable and to discover its endpoint ID.

Examples:
  gcs info --url https://gcs.example.org
  gcs info -o json`,
	Annotations: map[string]string{"route": "GET /info"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.BaseURL == "" {
			return fmt.Errorf(errmsg.MsgBaseURLRequired)
		}

		// Info needs no token, so a bare client is enough
		client, err := gcs.NewClientNoAuth(cfg)
		if err != nil {
			return err
		}

		resp, err := client.GetInfo(context.Background())
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
		return output.PrintRecord(cmd.OutOrStdout(), record, infoKeys)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
