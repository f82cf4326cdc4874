// Package cmd - lists command
package cmd

import (
	"github.com/spf13/cobra"

	"price-list/core/output"
	"price-list/core/types"
	"price-list/internal/config"
)

var (
	listsAll    bool
	listsFormat string
)

// listsCmd represents the lists command
var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List the price lists in the price book",
	Args:  cobra.NoArgs,
	RunE:  runLists,
}

func init() {
	listsCmd.Flags().BoolVarP(&listsAll, "all", "a", false, "include inactive price lists")
	listsCmd.Flags().StringVarP(&listsFormat, "format", "f", "", "output format (cli, json)")
}

func runLists(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	formatter, err := output.NewRegistry(cfg.Output.NoColor).Get(output.Format(pick(listsFormat, cfg.Output.DefaultFormat)))
	if err != nil {
		return err
	}

	c, err := loadCatalog()
	if err != nil {
		return err
	}

	var lists []types.PriceList
	for _, pl := range c.PriceLists() {
		if pl.Active || listsAll {
			lists = append(lists, pl)
		}
	}
	return formatter.RenderPriceLists(cmd.OutOrStdout(), lists)
}
