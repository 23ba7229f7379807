package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/flatsql/flatsql"
	"github.com/flatsql/flatsql/core"
	"github.com/flatsql/flatsql/db"
	"github.com/flatsql/flatsql/ps"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
)

// Version is set at build time via -ldflags
var Version = "dev"

type CLI struct {
	engine *db.Engine
}

func main() {
	dir := flag.String("dir", "./data", "Storage directory ('' for in-memory)")
	track := flag.Bool("track", false, "Record every change as a git commit")
	sqlFile := flag.String("sqlFile", "", "SQL file to execute (non-interactive)")
	userName := flag.String("name", "FlatSQL", "Author name for tracked changes")
	userEmail := flag.String("email", "cli@flatsql.local", "Author email for tracked changes")
	flag.Parse()

	var store *ps.Store
	if *dir == "" {
		store = ps.NewMemoryStore()
	} else {
		var err error
		store, err = ps.NewFileStore(*dir)
		if err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
	}

	if *track {
		if err := store.Track(core.Identity{Name: *userName, Email: *userEmail}); err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
	}

	cli := &CLI{engine: flatsql.Open(store).Engine()}

	if *sqlFile != "" {
		if err := cli.importFrom(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	if *dir == "" {
		fmt.Printf("FlatSQL v%s (in-memory)\n", Version)
	} else {
		fmt.Printf("FlatSQL v%s (%s)\n", Version, *dir)
	}
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()

	cli.run()
}

func (cli *CLI) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          PromptColor + "flatsql> " + ResetColor,
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println("Goodbye!")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if cli.handleCommand(line) {
				continue
			}
			fmt.Println("Goodbye!")
			return
		}

		result, err := cli.engine.Execute(line)
		if err != nil {
			fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
			continue
		}
		db.Display(result)
	}
}

// handleCommand runs one dot-command, returning false when the REPL should
// exit.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit", ".q":
		return false

	case ".help", ".h":
		printHelp()

	case ".tables":
		for _, table := range cli.engine.Store().ListTables() {
			fmt.Println(table)
		}

	case ".schema":
		if len(parts) < 2 {
			fmt.Printf("%s✗ Usage: .schema <table>%s\n", ErrorColor, ResetColor)
			break
		}
		cli.showSchema(parts[1])

	case ".import":
		if len(parts) < 2 {
			fmt.Printf("%s✗ Usage: .import <url>%s\n", ErrorColor, ResetColor)
			break
		}
		if err := cli.importFrom(parts[1]); err != nil {
			fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		}

	case ".export":
		if len(parts) < 2 {
			fmt.Printf("%s✗ Usage: .export <url>%s\n", ErrorColor, ResetColor)
			break
		}
		if err := cli.exportTo(parts[1]); err != nil {
			fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		}

	case ".log":
		limit := 20
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 {
				fmt.Printf("%s✗ Usage: .log [count]%s\n", ErrorColor, ResetColor)
				return true
			}
			limit = n
		}
		cli.showLog(limit)

	default:
		fmt.Printf("%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, command, ResetColor)
	}

	return true
}

func printHelp() {
	fmt.Println()
	fmt.Println("Special commands:")
	fmt.Println("  .help            Show this help message")
	fmt.Println("  .quit, .exit     Exit the CLI")
	fmt.Println("  .tables          List all tables")
	fmt.Println("  .schema <table>  Show a table's columns")
	fmt.Println("  .import <url>    Execute SQL statements from a path, file://, http(s):// or s3:// URL")
	fmt.Println("  .export <url>    Dump all tables as SQL to a path, file:// or s3:// URL")
	fmt.Println("  .log [count]     Show recorded changes (requires -track)")
	fmt.Println()
	fmt.Println("SQL statements:")
	fmt.Println("  CREATE TABLE <table> (<column> <type>, ...);")
	fmt.Println("  INSERT INTO <table> VALUES (<values>);")
	fmt.Println("  SELECT <columns> FROM <table> [JOIN ...] [WHERE ...];")
	fmt.Println("  UPDATE <table> SET <column> = <value>, ... [WHERE ...];")
	fmt.Println("  DELETE FROM <table> [WHERE ...];")
	fmt.Println("  DROP TABLE <table>;")
	fmt.Println()
	fmt.Println("Types: INT, VARCHAR, VARCHAR(n). Keywords are case-sensitive.")
	fmt.Println()
}

func (cli *CLI) showSchema(table string) {
	schema, err := cli.engine.Store().LoadSchema(table)
	if err != nil {
		fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}

	for _, column := range schema.Columns {
		fmt.Printf("  %s %s\n", column.Name, column.Type)
	}
}

func (cli *CLI) showLog(limit int) {
	history := cli.engine.Store().History()
	if history == nil {
		fmt.Printf("%s✗ Change tracking is disabled (start with -track)%s\n", ErrorColor, ResetColor)
		return
	}

	changes, err := history.Entries(limit)
	if err != nil {
		fmt.Printf("%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	if len(changes) == 0 {
		fmt.Println("No changes recorded")
		return
	}

	for _, change := range changes {
		fmt.Println(change)
	}
}

// importFrom executes every SQL statement from a local path or a file://,
// http(s):// or s3:// URL, reporting per statement and continuing past
// failures.
func (cli *CLI) importFrom(url string) error {
	reader, err := db.OpenRemoteReader(context.Background(), url, db.RemoteOptions{})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", url, err)
	}

	succeeded := 0
	failed := 0
	for i, statement := range db.SplitStatements(string(data)) {
		result, err := cli.engine.Execute(statement)
		if err != nil {
			fmt.Printf("%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(statement, 50), ResetColor)
			fmt.Printf("      Error: %v\n", err)
			failed++
			continue
		}

		succeeded++
		switch r := result.(type) {
		case db.QueryResult:
			fmt.Printf("%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i+1, truncate(statement, 50), len(r.Rows), ResetColor)
		default:
			fmt.Printf("%s[%d] ✓ %s%s\n", SuccessColor, i+1, truncate(statement, 50), ResetColor)
		}
	}

	fmt.Printf("\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, succeeded, failed, ResetColor)
	return nil
}

// exportTo dumps all tables to a local path or a file:// or s3:// URL.
func (cli *CLI) exportTo(url string) error {
	if err := cli.engine.ExportTo(context.Background(), url, db.RemoteOptions{}); err != nil {
		return err
	}

	fmt.Printf("%s✓ Exported to %s%s\n", SuccessColor, url, ResetColor)
	return nil
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flatsql_history")
}
