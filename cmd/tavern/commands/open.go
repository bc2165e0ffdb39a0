package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [directory]",
	Short: "Open a project and print its supervisor's identity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		workDir, err := GetWorkDir(dir)
		if err != nil {
			return err
		}

		p, err := manager.Open(cmd.Context(), workDir)
		if err != nil {
			return fmt.Errorf("open project: %w", err)
		}
		defer manager.Close(p.Root())

		sup := p.Supervisor()
		fmt.Printf("project: %s\n", p.Root())
		fmt.Printf("supervisor: %s (%s)\n", sup.ID(), sup.State())
		return nil
	},
}
