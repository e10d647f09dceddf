package main

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-homes/pkg/common"
	"github.com/matst80/slask-homes/pkg/search"
	"github.com/matst80/slask-homes/pkg/server"
	"github.com/matst80/slask-homes/pkg/sorting"
	"github.com/matst80/slask-homes/pkg/tracking"
	"github.com/matst80/slask-homes/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fetch one result page and print it as json",
	Example: `  finder search "propertyType=villa&sortBy=price_low"
  finder search --api http://localhost:5000/api/properties`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

// newSearchClient is replaced in tests.
var newSearchClient = func() (search.Client, []search.Option, []common.ShutdownHook, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	client, hooks := buildClient(cfg)
	return client, fetchOptions(cfg, tracking.NoTracking{}), hooks, nil
}

func runHooks(ctx context.Context, hooks []common.ShutdownHook) {
	for _, h := range hooks {
		if err := h(ctx); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	client, opts, hooks, err := newSearchClient()
	if err != nil {
		return err
	}
	defer runHooks(context.WithoutCancel(cmd.Context()), hooks)
	model := types.Decode(query)
	res, fetchErr := search.NewFetcher(client, opts...).Fetch(cmd.Context(), model)

	out := server.SearchResponse{
		Query:    types.Encode(model),
		Page:     model.Page,
		PageSize: types.PageSize,
		Items:    []types.Property{},
	}
	if res != nil {
		out.Items = sorting.Refine(res.Page, model)
		out.Total = res.Page.Total
		out.Fallback = res.Fallback
		if res.Cause != nil {
			out.Error = res.Cause.Error()
		}
	}
	if fetchErr != nil {
		out.Error = fetchErr.Error()
	}
	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return fetchErr
}
