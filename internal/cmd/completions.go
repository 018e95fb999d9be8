package cmd

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
)

// completionTimeout is the maximum time to wait for API responses during completion
const completionTimeout = 5 * time.Second

// completionItem is one completion candidate with an optional description.
type completionItem struct {
	Name string
	Desc string
}

// Completer handles shell completion with injectable dependencies for testing.
type Completer struct {
	// LoadConfig loads the completion configuration.
	// Returns nil if config cannot be loaded.
	LoadConfig func() *gcs.Config

	// ListCollections fetches collection candidates from the API.
	ListCollections func(ctx context.Context, cfg *gcs.Config) ([]completionItem, error)

	// ListStorageGateways fetches storage gateway candidates from the API.
	ListStorageGateways func(ctx context.Context, cfg *gcs.Config) ([]completionItem, error)

	// Timeout for API calls. Defaults to completionTimeout if zero.
	Timeout time.Duration
}

// defaultCompleter is the production completer with real implementations.
var defaultCompleter = &Completer{
	LoadConfig:          loadCompletionConfig,
	ListCollections:     listCollectionsAPI,
	ListStorageGateways: listStorageGatewaysAPI,
	Timeout:             completionTimeout,
}

// listCollectionsAPI is the production implementation for listing collections.
func listCollectionsAPI(ctx context.Context, cfg *gcs.Config) ([]completionItem, error) {
	client, err := gcs.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	resp, err := client.ListCollections(ctx, nil)
	if err != nil {
		return nil, err
	}
	return completionItemsFromRecords(collectRecords(resp.Items())), nil
}

// listStorageGatewaysAPI is the production implementation for listing storage gateways.
func listStorageGatewaysAPI(ctx context.Context, cfg *gcs.Config) ([]completionItem, error) {
	client, err := gcs.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	resp, err := client.ListStorageGateways(ctx, nil)
	if err != nil {
		return nil, err
	}
	return completionItemsFromRecords(collectRecords(resp.Items())), nil
}

// completionItemsFromRecords extracts id/display_name pairs from listing records.
func completionItemsFromRecords(records []map[string]interface{}) []completionItem {
	var items []completionItem
	for _, record := range records {
		id, _ := record["id"].(string)
		if id == "" {
			continue
		}
		name, _ := record["display_name"].(string)
		items = append(items, completionItem{Name: id, Desc: name})
	}
	return items
}

// getTimeout returns the configured timeout or the default.
func (c *Completer) getTimeout() time.Duration {
	if c.Timeout == 0 {
		return completionTimeout
	}
	return c.Timeout
}

// CompleteCollectionIDs provides dynamic completion for collection ID arguments.
// Fails silently if auth is not configured or the API is unreachable.
func (c *Completer) CompleteCollectionIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Only complete the first argument
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeFromAPI(c.ListCollections, toComplete)
}

// CompleteStorageGatewayIDs provides dynamic completion for storage gateway ID arguments.
// Fails silently if auth is not configured or the API is unreachable.
func (c *Completer) CompleteStorageGatewayIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeFromAPI(c.ListStorageGateways, toComplete)
}

// completeFromAPI runs one listing call under the completion timeout and
// turns the result into completions.
func (c *Completer) completeFromAPI(list func(ctx context.Context, cfg *gcs.Config) ([]completionItem, error), toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg := c.LoadConfig()
	if cfg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Without URL and token there is nothing to ask
	if err := cfg.Validate(); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.getTimeout())
	defer cancel()

	items, err := list(ctx, cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return buildCompletions(items, toComplete,
		func(i completionItem) string { return i.Name },
		func(i completionItem) string { return i.Desc },
	), cobra.ShellCompDirectiveNoFileComp
}

// buildCompletions filters items by prefix and formats them for shell completion.
// Uses tab-separated format "name\tdescription" when description is available.
func buildCompletions[T any](items []T, toComplete string, getName func(T) string, getDesc func(T) string) []string {
	var completions []string
	for _, item := range items {
		name := getName(item)
		if toComplete == "" || strings.HasPrefix(strings.ToLower(name), strings.ToLower(toComplete)) {
			if desc := getDesc(item); desc != "" {
				completions = append(completions, name+"\t"+desc)
			} else {
				completions = append(completions, name)
			}
		}
	}
	return completions
}

// Package-level functions that use the default completer.
// These are used by command wiring.

// completeCollectionIDs provides dynamic completion for collection IDs.
func completeCollectionIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return defaultCompleter.CompleteCollectionIDs(cmd, args, toComplete)
}

// completeStorageGatewayIDs provides dynamic completion for storage gateway IDs.
func completeStorageGatewayIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return defaultCompleter.CompleteStorageGatewayIDs(cmd, args, toComplete)
}

// completeSessionNames completes saved session names from the local store.
func completeSessionNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	sessions, err := gcs.LoadSessions()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var items []completionItem
	for name, session := range sessions.Sessions {
		items = append(items, completionItem{Name: name, Desc: session.URL})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return buildCompletions(items, toComplete,
		func(i completionItem) string { return i.Name },
		func(i completionItem) string { return i.Desc },
	), cobra.ShellCompDirectiveNoFileComp
}

// completeConfigKeys completes config key arguments from the known key set.
func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var items []completionItem
	for _, key := range sortedConfigKeys() {
		items = append(items, completionItem{Name: key, Desc: configKeyDescriptions[key]})
	}

	return buildCompletions(items, toComplete,
		func(i completionItem) string { return i.Name },
		func(i completionItem) string { return i.Desc },
	), cobra.ShellCompDirectiveNoFileComp
}

// RegisterFlagCompletions registers dynamic completions for global flags.
// This should be called from root.go init() after flags are defined.
func RegisterFlagCompletions() {
	rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// This enables: gcs --session <TAB>
	rootCmd.RegisterFlagCompletionFunc("session", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeSessionNames(cmd, nil, toComplete)
	})
}

// loadCompletionConfig loads configuration for completion functions.
// Returns nil if config cannot be loaded (completions will be empty).
// This function silently fails to avoid breaking shell completion.
func loadCompletionConfig() *gcs.Config {
	var cfg *gcs.Config
	var err error

	if sessionName != "" {
		cfg, err = gcs.LoadConfigFromSession(sessionName)
	} else {
		cfg, err = gcs.LoadConfig()
	}
	if err != nil {
		return nil
	}

	// Apply command-line flag overrides
	cfg.MergeWithFlags(gcs.FlagValues{
		BaseURL:            baseURL,
		AccessToken:        accessToken,
		Timeout:            timeout,
		InsecureSkipVerify: insecureSkipVerify,
	})
	// Never verbose during completion: stray diagnostics would corrupt
	// the shell's completion output
	cfg.Verbose = false

	if sessionName == "" && cfg.AccessToken == "" {
		adoptDefaultSession(cfg)
	}

	return cfg
}
