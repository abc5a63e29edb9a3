// Command reset_ticketing empties the ticketing ledger tables of a development
// database. Token balances and users are kept unless --all is given.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
)

var ledgerTables = []string{"notifications", "ticket_holdings", "events", "registry_settings"}
var tokenTables = []string{"token_transfers", "token_allowances", "token_accounts", "token_config", "users"}

type options struct {
	dsn string
	all bool
	yes bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("reset_ticketing", pflag.ContinueOnError)
	flagSet.StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (default: built from DB_* environment variables)")
	flagSet.BoolVar(&opts.all, "all", false, "also reset token balances and users")
	flagSet.BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

// tablesFor lists the tables to truncate, children before parents.
func tablesFor(all bool) []string {
	tables := append([]string{}, ledgerTables...)
	if all {
		tables = append(tables, tokenTables...)
	}
	return tables
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("Invalid arguments: %v", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	connStr := opts.dsn
	if connStr == "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	tables := tablesFor(opts.all)

	if !opts.yes {
		fmt.Printf("This will delete every row in: %s\nContinue? (y/N): ", strings.Join(tables, ", "))
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return
		}
	}

	if _, err := db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY"); err != nil {
		log.Fatalf("Failed to truncate tables: %v", err)
	}

	log.Printf("Reset %d tables", len(tables))
}
