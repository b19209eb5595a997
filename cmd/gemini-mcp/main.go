// gemini-mcp - MCP server wrapping the Gemini CLI for AI-driven tasks.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/missdeer/gemini-mcp-go/gemini"
	"github.com/missdeer/gemini-mcp-go/mcpserver"
)

const version = "0.1.0"

var configFlag string

func main() {
	// Stdout is the protocol channel; all logging goes to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gemini-mcp",
	Short:   "MCP server that provides AI-driven tasks through the Gemini CLI",
	Version: version,
	Long: `gemini-mcp - MCP server wrapping the Gemini CLI for AI-driven tasks.

The server communicates via stdio using the Model Context Protocol (MCP)
and exposes a single "gemini" tool. Configure it in your MCP client:

  {
    "mcpServers": {
      "gemini": {
        "command": "/path/to/gemini-mcp"
      }
    }
  }

If a GEMINI.md file exists in the working directory, its content is
prepended to every prompt as project-specific context (max 100KB).

Environment:
  GEMINI_BIN              Override the gemini binary path (default: "gemini")
  GEMINI_DEFAULT_TIMEOUT  Default timeout in seconds (1-3600, default: 600)
  GEMINI_FORCE_MODEL      Default model when a request omits "model"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP protocol on stdio (the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

var (
	runSandbox bool
	runAll     bool
	runModel   string
	runResume  string
	runTimeout int
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Run a single gemini task from the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newRunner()
		if err != nil {
			return err
		}

		req := gemini.Request{
			Prompt:     args[0],
			Sandbox:    runSandbox,
			Resume:     runResume,
			Model:      runModel,
			CaptureAll: runAll,
		}
		if cmd.Flags().Changed("timeout") {
			if runTimeout < gemini.MinTimeoutSecs || runTimeout > gemini.MaxTimeoutSecs {
				return fmt.Errorf("--timeout must be between %d and %d seconds",
					gemini.MinTimeoutSecs, gemini.MaxTimeoutSecs)
			}
			req.TimeoutSecs = runTimeout
		}

		res, err := runner.Run(cmd.Context(), req)
		if err != nil {
			if errors.Is(err, gemini.ErrTimeout) {
				return err
			}
			return fmt.Errorf("failed to execute gemini: %w", err)
		}

		fmt.Printf("success: %v\n", res.Success)
		fmt.Printf("SESSION_ID: %s\n", res.SessionID)
		fmt.Printf("agent_messages: %s\n", res.AgentMessages)
		if runAll && len(res.AllMessages) > 0 {
			fmt.Printf("all_messages: %d events captured\n", len(res.AllMessages))
		}
		if !res.Success {
			return errors.New(res.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"Path to a YAML config file (keys: bin, force_model, work_dir, context_file, default_timeout_secs)")

	runCmd.Flags().BoolVar(&runSandbox, "sandbox", false, "Run in sandbox mode")
	runCmd.Flags().BoolVar(&runAll, "all", false, "Capture all events, not just the final reply")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model to use for this task")
	runCmd.Flags().StringVar(&runResume, "resume", "", "Session ID to resume")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "Timeout in seconds (1-3600)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
}

func newRunner() (*gemini.Runner, error) {
	cfg, err := gemini.ResolveConfig(configFlag, nil)
	if err != nil {
		return nil, err
	}
	return gemini.NewRunner(cfg), nil
}

func serve(cmd *cobra.Command) error {
	runner, err := newRunner()
	if err != nil {
		return err
	}

	srv := mcpserver.New("gemini-mcp", version, mcpserver.NewGeminiTool(runner))
	if err := srv.Serve(cmd.Context(), os.Stdin, os.Stdout); err != nil {
		slog.Error("serving error", "error", err)
		return err
	}
	return nil
}
