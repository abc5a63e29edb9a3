package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"event-ticketing/internal/config"
	"event-ticketing/internal/database"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var dsn string
	var statusOnly bool

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (default: built from DB_* environment variables)")
	flagSet.BoolVar(&statusOnly, "status", false, "report which tables exist without migrating")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dsn = cfg.GetDSN()
	}

	if err := database.Connect(dsn); err != nil {
		return err
	}

	if !statusOnly {
		if err := database.AutoMigrate(); err != nil {
			return err
		}
	}

	tables, err := database.Status(database.GetDB())
	if err != nil {
		return err
	}
	for _, t := range tables {
		state := "missing"
		if t.Exists {
			state = "ok"
		}
		fmt.Printf("%-8s %-20s %s\n", t.Group, t.Table, state)
	}

	log.Println("Migration check finished")
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Creates or updates the ticketing database schema.")
	fmt.Fprintln(os.Stderr)
	flagSet.PrintDefaults()
}
