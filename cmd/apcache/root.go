package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-accesspoint-cache/accesscache"
	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/internal/config"
	"github.com/goliatone/go-accesspoint-cache/memory"
	"github.com/goliatone/go-accesspoint-cache/metrics"
	"github.com/goliatone/go-accesspoint-cache/pkg/di"
	"github.com/goliatone/go-accesspoint-cache/site"
)

type rootOptions struct {
	sitePath string
	verbose  bool
	repeat   int
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "apcache",
		Short:         "Query access points through the result cache",
		Long:          "apcache loads a site definition, registers its collections behind the cache and runs searches against them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.sitePath, "site", "", "YAML site definition (default: built-in things collection)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log cache activity")
	rootCmd.PersistentFlags().IntVar(&opts.repeat, "repeat", 1, "Run the query this many times")

	rootCmd.AddCommand(
		searchCmd(opts),
		openCmd(opts),
		collectionsCmd(opts),
	)
	return rootCmd
}

func searchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <collection> [field=value...]",
		Short: "List the items matching every field=value pair",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, func(ctx context.Context, s *site.Site, name string, criteria accesspoint.Criteria) error {
				items, err := s.SearchAll(ctx, name, criteria)
				if err != nil {
					return err
				}
				for _, item := range items {
					fmt.Fprintln(cmd.OutOrStdout(), item)
				}
				return nil
			})
		},
	}
}

func openCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <collection> [field=value...]",
		Short: "Print the single item matching every field=value pair",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, func(ctx context.Context, s *site.Site, name string, criteria accesspoint.Criteria) error {
				item, err := s.Open(ctx, name, criteria)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), item)
				return nil
			})
		},
	}
}

func collectionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collections of the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadSite(opts.sitePath)
			if err != nil {
				return err
			}
			for _, c := range def.Collections {
				mode := "cached"
				if !c.IsCached() {
					mode = "direct"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tidentity=%s\n", c.Name, mode, strings.Join(c.Identity, ","))
			}
			return nil
		},
	}
}

type queryFunc func(ctx context.Context, s *site.Site, name string, criteria accesspoint.Criteria) error

func run(cmd *cobra.Command, opts *rootOptions, args []string, query queryFunc) error {
	if opts.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	def, err := loadSite(opts.sitePath)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry, "apcache")
	if err != nil {
		return err
	}
	container, err := di.NewContainer(def.Cache, di.WithLogger(logger), di.WithRecorder(recorder))
	if err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := buildSite(ctx, def, container)
	if err != nil {
		return err
	}

	name := args[0]
	ap, err := s.AccessPoint(name)
	if err != nil {
		return err
	}
	criteria, err := parseCriteria(ap.Properties(), args[1:])
	if err != nil {
		return err
	}

	for i := 0; i < opts.repeat; i++ {
		if err := query(ctx, s, name, criteria); err != nil {
			return err
		}
	}

	stats, err := cacheStats(registry)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cache: hits=%d misses=%d\n", stats["apcache_cache_hits_total"], stats["apcache_cache_misses_total"])
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func loadSite(path string) (*config.Site, error) {
	if path == "" {
		return config.Parse(strings.NewReader(defaultSite))
	}
	return config.Load(path)
}

// buildSite registers a memory access point per collection, seeds it and
// wraps it in the cache unless the collection opts out.
func buildSite(ctx context.Context, def *config.Site, container *di.Container) (*site.Site, error) {
	s := site.New()
	for _, c := range def.Collections {
		schema, err := c.Schema()
		if err != nil {
			return nil, err
		}
		base, err := memory.New(schema, c.Identity...)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.Name, err)
		}
		for _, fields := range c.Items {
			item, err := base.Create(fields)
			if err != nil {
				return nil, fmt.Errorf("collection %s: %w", c.Name, err)
			}
			if err := item.Save(ctx); err != nil {
				return nil, fmt.Errorf("collection %s: %w", c.Name, err)
			}
		}

		var ap accesspoint.AccessPoint = base
		if c.IsCached() {
			ap = di.NewCachedAccessPoint(container, base, accesscache.WithNamespace(c.Name))
		}
		if err := s.Register(c.Name, ap); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parseCriteria turns field=value arguments into criteria typed by schema.
func parseCriteria(schema accesspoint.Schema, args []string) (accesspoint.Criteria, error) {
	criteria := make(accesspoint.Criteria, len(args))
	for _, arg := range args {
		field, raw, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", arg)
		}
		prop, ok := schema[field]
		if !ok {
			return nil, fmt.Errorf("unknown field %q (known: %s)", field, strings.Join(schema.Names(), ", "))
		}
		value, err := parseValue(prop.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		criteria[field] = value
	}
	return criteria, nil
}

func parseValue(t accesspoint.PropertyType, raw string) (any, error) {
	switch t {
	case accesspoint.TypeInt:
		return strconv.Atoi(raw)
	case accesspoint.TypeFloat:
		return strconv.ParseFloat(raw, 64)
	case accesspoint.TypeBool:
		return strconv.ParseBool(raw)
	case accesspoint.TypeTime:
		return time.Parse(time.RFC3339, raw)
	}
	return raw, nil
}

func cacheStats(registry *prometheus.Registry) (map[string]int, error) {
	families, err := registry.Gather()
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int, len(families))
	for _, family := range families {
		total := 0.0
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		stats[family.GetName()] = int(total)
	}
	return stats, nil
}

const defaultSite = `
collections:
  - name: things
    identity: [id]
    properties:
      id: int
      name: string
    items:
      - {id: 1, name: foo}
      - {id: 2, name: bar}
      - {id: 3, name: bar}
`
