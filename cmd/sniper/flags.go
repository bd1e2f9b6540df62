package main

import "github.com/urfave/cli/v2"

var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.json",
		Usage:   "load configuration from `file`",
	}

	ItemIdFlag = &cli.Int64Flag{
		Name:     "id",
		Usage:    "item `id`",
		Required: true,
	}
	MaxPriceFlag = &cli.Int64Flag{
		Name:  "max",
		Usage: "maximum purchase price in R$, defaults to the item's current price",
	}
	AlertPriceFlag = &cli.Int64Flag{
		Name:  "alert-price",
		Usage: "alert threshold price in R$, defaults to the item's current price",
	}
	AlertOnlyFlag = &cli.BoolFlag{
		Name:  "alert-only",
		Usage: "register the price alert without purchasing",
	}

	QueryFlag = &cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "fuzzy match item names against `query`",
	}
	RarityFlag = &cli.StringFlag{
		Name:  "rarity",
		Usage: "filter by rarity: common, uncommon, rare, legendary",
	}
	MinFlag = &cli.Int64Flag{
		Name:  "min",
		Usage: "minimum price in R$",
	}
	MaxFlag = &cli.Int64Flag{
		Name:  "max",
		Usage: "maximum price in R$",
	}
	SortFlag = &cli.StringFlag{
		Name:  "sort",
		Value: "latest",
		Usage: "sort order: latest, price_asc, price_desc, views",
	}
	TopNFlag = &cli.IntFlag{
		Name:  "top",
		Usage: "show only the first `n` items",
	}
)
