package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <graph-type>",
		Short: "Delete one namespace and all its nodes and edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cache.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("%s: deleted\n", args[0])
			return nil
		},
	}
}

func (c *CLI) newPurgeCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				cmd.Print("delete ALL cached graphs? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					return fmt.Errorf("aborted")
				}
			}
			if err := c.cache.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("all namespaces deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
