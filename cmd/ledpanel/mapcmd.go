package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-ledpanel/internal/config"
	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
)

func newMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Print the chain index of every pixel, row by row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return printMap(cmd.OutOrStdout(), cfg)
		},
	}
}

func printMap(w io.Writer, cfg *config.Config) error {
	m, err := cfg.Mapper()
	if err != nil {
		return err
	}
	g := cfg.Geom()
	if err := geometry.CheckBijective(m, g); err != nil {
		return err
	}
	width := len(fmt.Sprint(g.Count() - 1))
	fmt.Fprintf(w, "%s, %s\n", g, cfg.Layout)
	for _, row := range geometry.Table(m, g) {
		for x, i := range row {
			if x > 0 {
				sep := " "
				if x%g.TileW == 0 {
					sep = " | "
				}
				io.WriteString(w, sep)
			}
			fmt.Fprintf(w, "%*d", width, i)
		}
		io.WriteString(w, "\n")
	}
	return nil
}
