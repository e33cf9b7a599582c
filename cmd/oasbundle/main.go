package main

import (
	"fmt"
	"os"

	"github.com/erraggy/oasbundle"
	"github.com/erraggy/oasbundle/cmd/oasbundle/commands"
	"github.com/erraggy/oasbundle/internal/cliutil"
)

// commandNames lists every command, in the order printUsage shows them.
var commandNames = []string{"bundle", "refs", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "version", "-v", "--version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	case "bundle":
		err = commands.HandleBundle(os.Args[2:])
	case "refs":
		err = commands.HandleRefs(os.Args[2:])
	case "mcp":
		err = commands.HandleMCP(os.Args[2:])
	default:
		cliutil.Writef(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			cliutil.Writef(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		cliutil.Writef(os.Stderr, "\n")
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		cliutil.Writef(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("oasbundle v%s\n", oasbundle.Version())
	fmt.Printf("  commit:     %s\n", oasbundle.Commit())
	fmt.Printf("  built:      %s\n", oasbundle.BuildTime())
	fmt.Printf("  go version: %s\n", oasbundle.GoVersion())
}

// suggestCommand returns the command closest to input within an edit
// distance of 2, or "" when none is that close.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`oasbundle - OpenAPI and JSON Schema $ref bundler

Usage:
  oasbundle <command> [options]

Commands:
  bundle      Bundle a document and everything it references into one file
  refs        List the $ref occurrences of a document graph
  mcp         Serve the bundler as MCP tools over stdio
  version     Show version information
  help        Show this help message

Examples:
  oasbundle bundle -o bundled.yaml openapi.yaml
  oasbundle bundle --format json -o api.json users.yaml orders.yaml
  oasbundle refs --external openapi.yaml
  oasbundle mcp

Run 'oasbundle <command> --help' for more information on a command.`)
}
