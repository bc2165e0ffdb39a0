package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loupgaroublond/tavern/internal/project"
	"github.com/loupgaroublond/tavern/internal/transcript"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript [directory] [agent]",
	Short: "Print the rehydrated transcript of the supervisor or a named servitor",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := GetWorkDir(args[0])
		if err != nil {
			return err
		}
		agent := ""
		if len(args) == 2 {
			agent = args[1]
		}

		p, err := manager.Open(cmd.Context(), workDir)
		if err != nil {
			return fmt.Errorf("open project: %w", err)
		}
		defer manager.Close(p.Root())

		agentID, err := resolveAgentID(p, agent)
		if err != nil {
			return err
		}

		path, err := p.TranscriptPath(cmd.Context(), agentID)
		if err != nil {
			return fmt.Errorf("transcript: %w", err)
		}

		messages, err := transcript.Read(path)
		if err != nil {
			return fmt.Errorf("transcript: %w", err)
		}

		for _, m := range messages {
			printMessage(m)
		}
		return nil
	},
}

func resolveAgentID(p *project.Project, agent string) (string, error) {
	if agent == "" {
		return p.Supervisor().ID(), nil
	}

	if a, err := p.Registry().GetByName(agent); err == nil {
		return a.ID(), nil
	}
	a, err := p.Registry().Get(agent)
	if err != nil {
		return "", fmt.Errorf("no such agent %q", agent)
	}
	return a.ID(), nil
}

func printMessage(m transcript.Message) {
	fmt.Printf("[%s] %s\n", m.Type, m.Timestamp)
	for _, b := range m.Blocks {
		switch b.Kind {
		case transcript.BlockText:
			fmt.Println(b.Text)
		case transcript.BlockToolUse:
			fmt.Printf("  tool_use %s(%s)\n", b.ToolName, b.ToolInput)
		case transcript.BlockToolResult:
			if b.IsError {
				fmt.Printf("  tool_result (error): %s\n", b.ResultText)
			} else {
				fmt.Printf("  tool_result: %s\n", b.ResultText)
			}
		default:
			fmt.Println("  (unrendered block)")
		}
	}
}
