package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newNamespacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "namespaces",
		Short: "List cached graph namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for graphType, err := range c.cache.Namespaces(cmd.Context()) {
				if err != nil {
					return err
				}
				cmd.Println(graphType)
			}
			return nil
		},
	}
}

func (c *CLI) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <graph-type>",
		Short: "Show row counts for a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, found, err := c.inspector.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				cmd.Printf("%s: absent\n", args[0])
				return nil
			}
			cmd.Printf("%s: %d node rows, %d edge rows\n",
				stats.GraphType, stats.NodeRows, stats.EdgeRows)
			return nil
		},
	}
}

func (c *CLI) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <graph-type>",
		Short: "Check a namespace's edge rows for missing endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.inspector.CheckIntegrity(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("%s: ok\n", args[0])
			return nil
		},
	}
}
