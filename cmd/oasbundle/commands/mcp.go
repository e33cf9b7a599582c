package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasbundle/internal/cliutil"
	"github.com/erraggy/oasbundle/internal/mcpserver"
)

// SetupMCPFlags creates the FlagSet for the mcp command. The server is
// configured through OASBUNDLE_* environment variables, not flags.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	fs.Usage = func() {
		output := fs.Output()
		cliutil.Writef(output, "Usage: oasbundle mcp\n\n")
		cliutil.Writef(output, "Serve the bundle, bundle_many and refs tools over the Model Context Protocol on stdio.\n\n")
		cliutil.Writef(output, "Environment:\n")
		cliutil.Writef(output, "  OASBUNDLE_RESOLVE_HTTP_REFS   follow $ref URLs over HTTP/HTTPS (default false)\n")
		cliutil.Writef(output, "  OASBUNDLE_ALLOW_PRIVATE_IPS   allow fetching from private and loopback addresses (default false)\n")
		cliutil.Writef(output, "  OASBUNDLE_BASE_DIR            refuse to read local files outside this directory\n")
		cliutil.Writef(output, "  OASBUNDLE_CONCURRENCY         external documents loaded at once (default 8)\n")
		cliutil.Writef(output, "  OASBUNDLE_CACHE_ENABLED       cache results between calls (default true)\n")
		cliutil.Writef(output, "\nExample client configuration:\n")
		cliutil.Writef(output, "  {\"command\": \"oasbundle\", \"args\": [\"mcp\"]}\n")
	}

	return fs
}

// HandleMCP executes the mcp command. It blocks until the client
// disconnects or the process is interrupted.
func HandleMCP(args []string) error {
	fs := SetupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpserver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
