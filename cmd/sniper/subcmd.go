package main

import (
	"fmt"
	"github.com/urfave/cli/v2"
	"github.com/xyths/hs"
	"github.com/xyths/roplace-sniper/catalog"
	"github.com/xyths/roplace-sniper/sniper"
	"os"
)

var (
	watchCommand = &cli.Command{
		Action: watch,
		Name:   "watch",
		Usage:  "Monitor the limited catalog and dispatch alerts",
	}
	catalogCommand = &cli.Command{
		Name:  "catalog",
		Usage: "Inspect the limited-item catalog",
		Subcommands: []*cli.Command{
			{
				Action: listCatalog,
				Name:   "list",
				Usage:  "List limited items",
				Flags: []cli.Flag{
					QueryFlag,
					RarityFlag,
					MinFlag,
					MaxFlag,
					SortFlag,
					TopNFlag,
				},
			},
			{
				Action: showItem,
				Name:   "show",
				Usage:  "Show one item's full record",
				Flags: []cli.Flag{
					ItemIdFlag,
				},
			},
		},
	}
	snipeCommand = &cli.Command{
		Action: snipeItem,
		Name:   "snipe",
		Usage:  "Attempt to buy an item at or below a maximum price",
		Flags: []cli.Flag{
			ItemIdFlag,
			MaxPriceFlag,
			AlertPriceFlag,
			AlertOnlyFlag,
		},
	}
)

func loadConfig(c *cli.Context) (sniper.Config, error) {
	configFile := c.String(ConfigFlag.Name)
	cfg := sniper.Config{}
	if err := hs.ParseJsonConfig(configFile, &cfg); err != nil {
		return cfg, err
	}
	// secrets win from the environment
	if token := os.Getenv("SNIPER_TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if token := os.Getenv("SNIPER_DISCORD_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	return cfg, nil
}

func initSniper(c *cli.Context) (*sniper.Sniper, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	s := sniper.New(cfg)
	if err = s.Init(c.Context); err != nil {
		return nil, err
	}
	return s, nil
}

func watch(c *cli.Context) error {
	s, err := initSniper(c)
	if err != nil {
		return err
	}
	defer s.Close(c.Context)
	return s.Watch(c.Context)
}

func listCatalog(c *cli.Context) error {
	s, err := initSniper(c)
	if err != nil {
		return err
	}
	defer s.Close(c.Context)

	items, err := s.List(c.Context, catalog.Filter{
		Query:    c.String(QueryFlag.Name),
		Rarity:   c.String(RarityFlag.Name),
		MinPrice: c.Int64(MinFlag.Name),
		MaxPrice: c.Int64(MaxFlag.Name),
		SortBy:   c.String(SortFlag.Name),
	}, c.Int(TopNFlag.Name))
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%d\t%-10s\tR$ %d\t%+.1f%%\t%d available\t%s\n",
			item.ID, item.Rarity, item.Price, item.Change, item.Available, item.Name)
	}
	return nil
}

func showItem(c *cli.Context) error {
	s, err := initSniper(c)
	if err != nil {
		return err
	}
	defer s.Close(c.Context)

	item, err := s.Show(c.Context, c.Int64(ItemIdFlag.Name))
	if err != nil {
		return err
	}
	fmt.Printf("%s (#%d)\nrarity: %s\nprice: R$ %d (%+.1f%%)\navailable: %d\nviews: %d\n",
		item.Name, item.ID, item.Rarity, item.Price, item.Change, item.Available, item.Views)
	if item.LastSale > 0 {
		fmt.Printf("last sale: R$ %d\n", item.LastSale)
	}
	if item.AveragePrice > 0 {
		fmt.Printf("resale: R$ %d avg (R$ %d - R$ %d)\n",
			item.AveragePrice, item.MinResellPrice, item.MaxResellPrice)
	}
	for _, p := range item.PriceHistory {
		fmt.Printf("  %d\tR$ %d\n", p.Timestamp, p.Price)
	}
	return nil
}

func snipeItem(c *cli.Context) error {
	s, err := initSniper(c)
	if err != nil {
		return err
	}
	defer s.Close(c.Context)

	return s.Snipe(c.Context,
		c.Int64(ItemIdFlag.Name),
		c.Int64(MaxPriceFlag.Name),
		c.Int64(AlertPriceFlag.Name),
		c.Bool(AlertOnlyFlag.Name),
	)
}
