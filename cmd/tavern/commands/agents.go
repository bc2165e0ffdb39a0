package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loupgaroublond/tavern/internal/agentcore"
)

var agentsCmd = &cobra.Command{
	Use:   "agents [directory]",
	Short: "List the supervisor and every registered servitor",
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
		fmt.Printf("%s\tsupervisor\t%s\n", sup.ID(), sup.State())

		for _, a := range p.Registry().All() {
			sv, ok := a.(*agentcore.Servitor)
			if !ok {
				continue
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", sv.ID(), sv.Name(), sv.State(), sv.Assignment())
		}
		return nil
	},
}
