package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server over the chapter's data",
	Long: `Start a Model Context Protocol stdio server that an assistant can
query. The server exposes four tools:

  get_dashboard     Headline numbers and action items for an officer role
  get_budget        Event budget versus spend
  get_overdue_dues  Collection rate and overdue members per open cycle
  search_members    Member search by name, company, industry or headline

Example MCP client configuration:
  {"mcpServers":{"chapterdesk":{"command":"chapterdesk","args":["mcp","--chapter","gamma"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	srv := mcp.NewServer(e.db, e.chapterID, appVersion)
	srv.GraceDays = e.cfg.Dues.OverdueGraceDays
	srv.SetClock(nowFunc)
	e.log.Debug("mcp server starting", "chapter", e.chapterID)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
