package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loupgaroublond/tavern/internal/project"
)

var sendAgent string

var sendCmd = &cobra.Command{
	Use:   "send [directory] -- message...",
	Short: "Send a message to a project's supervisor or a named servitor",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := GetWorkDir(args[0])
		if err != nil {
			return err
		}
		message := strings.Join(args[1:], " ")
		if message == "" {
			return fmt.Errorf("send: no message given")
		}

		p, err := manager.Open(cmd.Context(), workDir)
		if err != nil {
			return fmt.Errorf("open project: %w", err)
		}
		defer manager.Close(p.Root())

		target, err := resolveSender(p, sendAgent)
		if err != nil {
			return err
		}

		reply, err := target.Send(cmd.Context(), message)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}

		fmt.Println(reply)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendAgent, "agent", "", "Servitor name or id to address (default: supervisor)")
}

type sender interface {
	Send(ctx context.Context, text string) (string, error)
}

func resolveSender(p *project.Project, agent string) (sender, error) {
	if agent == "" {
		return p.Supervisor(), nil
	}

	if a, err := p.Registry().GetByName(agent); err == nil {
		sv, ok := a.(sender)
		if !ok {
			return nil, fmt.Errorf("send: agent %q cannot receive messages", agent)
		}
		return sv, nil
	}

	a, err := p.Registry().Get(agent)
	if err != nil {
		return nil, fmt.Errorf("send: no such agent %q", agent)
	}
	sv, ok := a.(sender)
	if !ok {
		return nil, fmt.Errorf("send: agent %q cannot receive messages", agent)
	}
	return sv, nil
}
