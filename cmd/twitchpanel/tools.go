package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mmcdole/twitchpanel/internal/adapter"
	"github.com/mmcdole/twitchpanel/internal/layout"
	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	var (
		count         int
		width, height float64
		aspect        float64
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the tile grid for a number of streams in a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return errors.New("--count must not be negative")
			}
			return printLayout(cmd.OutOrStdout(), count, aspect, width, height)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 4, "number of tiles")
	cmd.Flags().Float64Var(&width, "width", 1920, "container width")
	cmd.Flags().Float64Var(&height, "height", 1080, "container height")
	cmd.Flags().Float64Var(&aspect, "aspect", 16.0/9.0, "tile aspect ratio (width/height)")
	return cmd
}

func printLayout(w io.Writer, count int, aspect, width, height float64) error {
	grid := layout.Compute(count, aspect, width, height)
	if grid.Empty() {
		_, err := fmt.Fprintln(w, "no tiles")
		return err
	}

	dx, dy := grid.Offset(width, height)
	fmt.Fprintf(w, "grid %dx%d  tile %.1fx%.1f  offset %.1f,%.1f\n",
		grid.Columns, grid.Rows, grid.TileWidth, grid.TileHeight, dx, dy)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TILE\tCOL\tROW\tGEOMETRY")
	cells := grid.Cells()
	for i, t := range grid.Tiles {
		c := cells[i]
		fmt.Fprintf(tw, "%d\t%d\t%d\t%dx%d+%d+%d\n",
			t.Index+1, t.Column, t.Row, c.Width, c.Height, c.X+int(dx), c.Y+int(dy))
	}
	return tw.Flush()
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := adapter.LoadEnv(opts.envFile); err != nil {
				return err
			}
			path := adapter.ConfigFile(opts.configPath)
			cfg, err := adapter.LoadConfig(path)
			if err != nil {
				return err
			}
			data, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file unless one exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := adapter.ConfigFile(opts.configPath)
			created, err := adapter.WriteDefaultConfig(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	})
	return cmd
}
