// Package commands provides the CLI commands for Tavern.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loupgaroublond/tavern/internal/logging"
	"github.com/loupgaroublond/tavern/internal/project"
)

var (
	// Version information set at build time.
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags.
var (
	printLogs bool
	logLevel  string
	logFile   bool
)

// manager is the process-wide project manager shared across commands
// invoked within one CLI process.
var manager = project.NewManager()

var rootCmd = &cobra.Command{
	Use:   "tavern",
	Short: "Tavern - desktop multi-agent orchestration core",
	Long: `Tavern drives a supervisor agent that dispatches short-lived
servitor agents against an external LLM runtime, keeping every
conversation in an append-only transcript on disk.

Run 'tavern open' to open a project, 'tavern send' to talk to its
supervisor or a named servitor, 'tavern agents' to list who is
registered, and 'tavern transcript' to rehydrate a conversation.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logCfg := logging.Config{
			Level:     logging.ParseLevel(logLevel),
			Output:    os.Stderr,
			Pretty:    printLogs,
			LogToFile: logFile,
		}

		if !printLogs && !logFile {
			logCfg.Level = logging.FatalLevel
		}

		logging.Init(logCfg)

		if logFile {
			logging.Info().
				Str("version", Version).
				Str("logFile", logging.GetLogFilePath()).
				Msg("tavern started with file logging")
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Write logs to /tmp/tavern-YYYYMMDD-HHMMSS.log")

	rootCmd.SetVersionTemplate(fmt.Sprintf("tavern %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(transcriptCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from an explicit argument
// or the process's current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
