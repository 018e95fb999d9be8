package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/output"
)

var (
	// Collection list flags
	collectionsFilter   string
	collectionsMappedID string
	collectionsInclude  []string
	collectionsPageSize int
	collectionsMarker   string
	collectionsAll      bool
	// Collection create/update flags
	collectionType               string
	collectionDisplayName        string
	collectionBasePath           string
	collectionStorageGatewayID   string
	collectionMappedCollectionID string
	collectionUserCredentialID   string
	collectionIdentityID         string
	collectionDescription        string
	collectionOrganization       string
	collectionDepartment         string
	collectionContactEmail       string
	collectionKeywords           []string
	collectionPublic             bool
	collectionAllowGuest         bool
	collectionData               string
	// Delete confirmation flag
	collectionsDeleteForce bool
)

// collectionColumns are the table columns for collection listings.
var collectionColumns = []output.Column{
	{Header: "ID", Key: "id"},
	{Header: "Display Name", Key: "display_name"},
	{Header: "Type", Key: "collection_type"},
	{Header: "Storage Gateway", Key: "storage_gateway_id"},
}

// collectionsCmd represents the collections command
var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage collections",
	Long: `Manage the collections of a GCS deployment.

Mapped collections expose a path on a storage gateway; guest collections
re-share a subtree of a mapped collection under the creating user's
identity.`,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Long: `List the collections on this endpoint.

Large deployments page their listings: the last line of a truncated table
names the marker to resume from, or use --all to fetch every page in one
go.

Examples:
  # Only mapped collections
  gcs collections list --filter mapped_collections

  # Guest collections of a mapped collection
  gcs collections list --mapped-collection-id 8a5e84ce-1635-4c2a-9dba-fc4a4e8d1d02

  # Everything, across all pages
  gcs collections list --all`,
	Annotations: map[string]string{"route": "GET /collections"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		opts := &gcs.ListCollectionsOptions{
			Include:            collectionsInclude,
			MappedCollectionID: collectionsMappedID,
			Filter:             collectionsFilter,
			Marker:             collectionsMarker,
			PageSize:           collectionsPageSize,
		}
		ctx := context.Background()

		if collectionsAll {
			records, err := drainItems(client.CollectionsPager(opts).Items(ctx))
			if err != nil {
				return err
			}
			return printRecordList(cmd, records, collectionColumns)
		}

		resp, err := client.ListCollections(ctx, opts)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		if err := output.PrintRecords(cmd.OutOrStdout(), collectRecords(resp.Items()), collectionColumns); err != nil {
			return err
		}
		if marker := gcs.NextMarker(resp); marker != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nMore results available: rerun with --marker %s (or --all)\n", marker)
		}
		return nil
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:         "show <collection-id>",
	Short:       "Show a collection",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "GET /collections/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "collection ID"); err != nil {
			return err
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		resp, err := client.GetCollection(context.Background(), args[0], collectionsInclude...)
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

var collectionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a collection",
	Long: `Create a mapped or guest collection.

A mapped collection needs a storage gateway and a base path. A guest
collection instead references the mapped collection it re-shares. The
document can also be given wholesale via --data (a string, @file, or -
for stdin); individual flags then override its fields.

Examples:
  # Mapped collection on a storage gateway
  gcs collections create --display-name "Project Data" \
    --storage-gateway-id 4a5e84ce-2635-4c2a-9dba-fc4a4e8d1d03 --base-path /srv/data

  # Guest collection re-sharing a subtree
  gcs collections create --type guest --display-name "Shared Results" \
    --mapped-collection-id 8a5e84ce-1635-4c2a-9dba-fc4a4e8d1d02 \
    --user-credential-id 1a5e84ce-4635-4c2a-9dba-fc4a4e8d1d05 --base-path /results

  # From a prepared document
  gcs collections create --data @collection.json`,
	Annotations: map[string]string{"route": "POST /collections"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		doc := &gcs.CollectionDocument{}
		if cmd.Flags().Changed("data") {
			if err := parseJSONData(cmd, collectionData, doc); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("type") || doc.CollectionType == "" {
			doc.CollectionType = collectionType
		}
		if cmd.Flags().Changed("display-name") {
			doc.DisplayName = collectionDisplayName
		}
		if cmd.Flags().Changed("base-path") || doc.CollectionBasePath == "" {
			doc.CollectionBasePath = collectionBasePath
		}
		if cmd.Flags().Changed("storage-gateway-id") {
			doc.StorageGatewayID = collectionStorageGatewayID
		}
		if cmd.Flags().Changed("mapped-collection-id") {
			doc.MappedCollectionID = collectionMappedCollectionID
		}
		if cmd.Flags().Changed("user-credential-id") {
			doc.UserCredentialID = collectionUserCredentialID
		}
		if cmd.Flags().Changed("identity-id") {
			doc.IdentityID = collectionIdentityID
		}
		if cmd.Flags().Changed("description") {
			doc.Description = collectionDescription
		}
		if cmd.Flags().Changed("organization") {
			doc.Organization = collectionOrganization
		}
		if cmd.Flags().Changed("department") {
			doc.Department = collectionDepartment
		}
		if cmd.Flags().Changed("contact-email") {
			doc.ContactEmail = collectionContactEmail
		}
		if cmd.Flags().Changed("keywords") {
			doc.Keywords = collectionKeywords
		}
		if cmd.Flags().Changed("public") {
			doc.Public = gcs.Bool(collectionPublic)
		}
		if cmd.Flags().Changed("allow-guest-collections") {
			doc.AllowGuestCollections = gcs.Bool(collectionAllowGuest)
		}

		resp, err := client.CreateCollection(context.Background(), doc)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return output.PrintRawJSON(cmd.OutOrStdout(), resp.RawBody(), compactJSON)
		}

		id, _ := resp.Get("id")
		fmt.Fprintf(cmd.ErrOrStderr(), "Collection created successfully: %v\n", id)
		return nil
	},
}

var collectionsUpdateCmd = &cobra.Command{
	Use:   "update <collection-id>",
	Short: "Update a collection",
	Long: `Update fields of a collection.

Only the fields given via flags (or --data) are sent; everything else is
left untouched.

Examples:
  # Rename a collection
  gcs collections update 8a5e84ce-1635-4c2a-9dba-fc4a4e8d1d02 --display-name "Archive"

  # Unlist it
  gcs collections update 8a5e84ce-1635-4c2a-9dba-fc4a4e8d1d02 --public=false`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "PATCH /collections/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "collection ID"); err != nil {
			return err
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		doc := &gcs.CollectionDocument{}
		if cmd.Flags().Changed("data") {
			if err := parseJSONData(cmd, collectionData, doc); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("display-name") {
			doc.DisplayName = collectionDisplayName
		}
		if cmd.Flags().Changed("description") {
			doc.Description = collectionDescription
		}
		if cmd.Flags().Changed("organization") {
			doc.Organization = collectionOrganization
		}
		if cmd.Flags().Changed("department") {
			doc.Department = collectionDepartment
		}
		if cmd.Flags().Changed("contact-email") {
			doc.ContactEmail = collectionContactEmail
		}
		if cmd.Flags().Changed("keywords") {
			doc.Keywords = collectionKeywords
		}
		if cmd.Flags().Changed("public") {
			doc.Public = gcs.Bool(collectionPublic)
		}
		if cmd.Flags().Changed("allow-guest-collections") {
			doc.AllowGuestCollections = gcs.Bool(collectionAllowGuest)
		}

		if _, err := client.UpdateCollection(context.Background(), args[0], doc); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Collection updated successfully: %s\n", args[0])
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <collection-id>",
	Short: "Delete a collection",
	Long: `Delete a collection.

Deleting a mapped collection also deletes its guest collections. The data
on the storage gateway is not touched.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"route": "DELETE /collections/{id}"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUUID(args[0], "collection ID"); err != nil {
			return err
		}

		// Confirm deletion unless --force is used
		if !collectionsDeleteForce {
			if !confirmDeletion(cmd, "collection", args[0]) {
				return nil
			}
		}

		client, err := gcs.NewClient(cfg)
		if err != nil {
			return err
		}

		if _, err := client.DeleteCollection(context.Background(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Collection deleted successfully: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsShowCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsUpdateCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)

	// Dynamic completion for collection ID arguments
	collectionsShowCmd.ValidArgsFunction = completeCollectionIDs
	collectionsUpdateCmd.ValidArgsFunction = completeCollectionIDs
	collectionsDeleteCmd.ValidArgsFunction = completeCollectionIDs

	collectionsListCmd.Flags().StringVar(&collectionsFilter, "filter", "", "Listing filter (e.g. mapped_collections, managed_by_me)")
	collectionsListCmd.Flags().StringVar(&collectionsMappedID, "mapped-collection-id", "", "List guest collections of this mapped collection")
	collectionsListCmd.Flags().StringSliceVar(&collectionsInclude, "include", nil, "Extra document fields to include")
	collectionsListCmd.Flags().IntVar(&collectionsPageSize, "page-size", 0, "Documents per page (0 = server default)")
	collectionsListCmd.Flags().StringVar(&collectionsMarker, "marker", "", "Resume a paged listing from this marker")
	collectionsListCmd.Flags().BoolVar(&collectionsAll, "all", false, "Fetch all pages")

	collectionsShowCmd.Flags().StringSliceVar(&collectionsInclude, "include", nil, "Extra document fields to include (e.g. private_policies)")

	collectionsCreateCmd.Flags().StringVar(&collectionType, "type", "mapped", "Collection type: mapped or guest")
	collectionsCreateCmd.Flags().StringVar(&collectionDisplayName, "display-name", "", "Collection display name")
	collectionsCreateCmd.Flags().StringVar(&collectionBasePath, "base-path", "/", "Base path on the gateway or mapped collection")
	collectionsCreateCmd.Flags().StringVar(&collectionStorageGatewayID, "storage-gateway-id", "", "Storage gateway ID (mapped collections)")
	collectionsCreateCmd.Flags().StringVar(&collectionMappedCollectionID, "mapped-collection-id", "", "Mapped collection ID (guest collections)")
	collectionsCreateCmd.Flags().StringVar(&collectionUserCredentialID, "user-credential-id", "", "User credential ID (guest collections)")
	collectionsCreateCmd.Flags().StringVar(&collectionIdentityID, "identity-id", "", "Owning Globus Auth identity ID")
	collectionsCreateCmd.Flags().StringVar(&collectionDescription, "description", "", "Collection description")
	collectionsCreateCmd.Flags().StringVar(&collectionOrganization, "organization", "", "Owning organization")
	collectionsCreateCmd.Flags().StringVar(&collectionDepartment, "department", "", "Owning department")
	collectionsCreateCmd.Flags().StringVar(&collectionContactEmail, "contact-email", "", "Support contact email")
	collectionsCreateCmd.Flags().StringSliceVar(&collectionKeywords, "keywords", nil, "Search keywords (comma-separated)")
	collectionsCreateCmd.Flags().BoolVar(&collectionPublic, "public", false, "List the collection publicly")
	collectionsCreateCmd.Flags().BoolVar(&collectionAllowGuest, "allow-guest-collections", false, "Allow guest collections (mapped collections)")
	collectionsCreateCmd.Flags().StringVar(&collectionData, "data", "", "JSON collection document (string, @file, or - for stdin)")

	collectionsUpdateCmd.Flags().StringVar(&collectionDisplayName, "display-name", "", "Collection display name")
	collectionsUpdateCmd.Flags().StringVar(&collectionDescription, "description", "", "Collection description")
	collectionsUpdateCmd.Flags().StringVar(&collectionOrganization, "organization", "", "Owning organization")
	collectionsUpdateCmd.Flags().StringVar(&collectionDepartment, "department", "", "Owning department")
	collectionsUpdateCmd.Flags().StringVar(&collectionContactEmail, "contact-email", "", "Support contact email")
	collectionsUpdateCmd.Flags().StringSliceVar(&collectionKeywords, "keywords", nil, "Search keywords (comma-separated)")
	collectionsUpdateCmd.Flags().BoolVar(&collectionPublic, "public", false, "List the collection publicly")
	collectionsUpdateCmd.Flags().BoolVar(&collectionAllowGuest, "allow-guest-collections", false, "Allow guest collections")
	collectionsUpdateCmd.Flags().StringVar(&collectionData, "data", "", "JSON collection document (string, @file, or - for stdin)")

	collectionsDeleteCmd.Flags().BoolVarP(&collectionsDeleteForce, "force", "f", false, "Skip confirmation prompt")
}
