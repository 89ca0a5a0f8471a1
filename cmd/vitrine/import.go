package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/rushteam/vitrine/config"
	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/store"
)

type importCommand struct {
	Args struct {
		File string `positional-arg-name:"FILE" description:"JSON file to import"`
	} `positional-args:"yes" required:"yes"`
}

// catalogDump 是导入文件的结构。
type catalogDump struct {
	Items    []core.CatalogItem `json:"items"`
	Listings []core.Listing     `json:"listings"`
}

func (c *importCommand) Execute(_ []string) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	data, err := os.ReadFile(c.Args.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.Args.File, err)
	}
	var dump catalogDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parse %s: %w", c.Args.File, err)
	}

	ctx := context.Background()
	cat, err := store.OpenSQLiteCatalog(ctx, cfg.Store.Catalog)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	if err := cat.UpsertItems(ctx, dump.Items); err != nil {
		return err
	}
	for _, l := range dump.Listings {
		if err := cat.AddListing(ctx, l); err != nil {
			return fmt.Errorf("listing %s: %w", l.ID, err)
		}
	}
	log.Info().Str("catalog", cfg.Store.Catalog).Int("items", len(dump.Items)).Int("listings", len(dump.Listings)).Msg("import done")
	return nil
}
