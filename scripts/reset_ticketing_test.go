package main

import (
	"testing"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--dsn", "host=db", "--all", "-y"})
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if opts.dsn != "host=db" || !opts.all || !opts.yes {
		t.Errorf("unexpected options %+v", opts)
	}

	opts, err = parseFlags(nil)
	if err != nil {
		t.Fatalf("failed to parse defaults: %v", err)
	}
	if opts.dsn != "" || opts.all || opts.yes {
		t.Errorf("expected zero defaults, got %+v", opts)
	}

	if _, err := parseFlags([]string{"--force"}); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, err := parseFlags([]string{"events"}); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestTablesFor(t *testing.T) {
	ledger := tablesFor(false)
	if len(ledger) != len(ledgerTables) {
		t.Fatalf("expected %d ledger tables, got %v", len(ledgerTables), ledger)
	}

	all := tablesFor(true)
	if len(all) != len(ledgerTables)+len(tokenTables) {
		t.Fatalf("expected ledger and token tables, got %v", all)
	}
	if all[0] != "notifications" || all[len(all)-1] != "users" {
		t.Errorf("unexpected order %v", all)
	}
	if len(tablesFor(false)) != len(ledgerTables) {
		t.Error("expected --all not to leak into later calls")
	}
}
