package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/camwillm/Cenarium/internal/combine"
	"github.com/camwillm/Cenarium/pkg/logger"
)

// sourceFlags collects repeated -source category=location flags
type sourceFlags []combine.Source

func (s *sourceFlags) String() string {
	parts := make([]string, len(*s))
	for i, src := range *s {
		parts[i] = src.Category + "=" + src.Location
	}
	return strings.Join(parts, ",")
}

func (s *sourceFlags) Set(value string) error {
	category, location, ok := strings.Cut(value, "=")
	if !ok || category == "" || location == "" {
		return fmt.Errorf("expected category=location, got %q", value)
	}
	*s = append(*s, combine.Source{Category: category, Location: location})
	return nil
}

func main() {
	var (
		dir          = flag.String("dir", ".", "directory holding <category>.json files")
		categories   = flag.String("categories", strings.Join(combine.DefaultCategories, ","), "comma-separated categories to read from -dir")
		out          = flag.String("out", "data/all-items.json", "output catalog file")
		fillCategory = flag.Bool("fill-category", false, "set missing item category to its group")
		assignIDs    = flag.Bool("assign-ids", false, "assign a UUID item_id to items without one")
		logLevel     = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		sources      sourceFlags
	)
	flag.Var(&sources, "source", "explicit category=path-or-url source (repeatable, overrides -dir)")
	flag.Parse()

	log := logger.New(*logLevel)
	slog.SetDefault(log)

	if len(sources) == 0 {
		var names []string
		for _, c := range strings.Split(*categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				names = append(names, c)
			}
		}
		sources = combine.SourcesFromDir(*dir, names)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	combiner := combine.NewCombiner(log, combine.Options{
		FillCategory: *fillCategory,
		AssignIDs:    *assignIDs,
	})

	catalog, err := combiner.Combine(ctx, sources)
	if err != nil {
		log.Error("failed to combine category files", "error", err)
		os.Exit(1)
	}

	if err := combine.WriteFile(*out, catalog); err != nil {
		log.Error("failed to write catalog", "out", *out, "error", err)
		os.Exit(1)
	}

	log.Info("catalog written",
		"out", *out,
		"categories", len(catalog),
		"items", catalog.ItemCount(),
	)
}
