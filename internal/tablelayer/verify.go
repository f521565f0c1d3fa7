package tablelayer

import (
	"context"
	"fmt"
	"strings"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
)

// verifyTables checks that every name in want exists as a table in the
// named attachment's sqlite_master. An ATTACHed database's own
// sqlite_master must be schema-qualified; the connection's main schema
// is visible unqualified.
func verifyTables(ctx context.Context, a adapter.Adapter, attachment string, want []string) error {
	master := "sqlite_master"
	if attachment != "main" {
		master = attachment + ".sqlite_master"
	}

	present := make(map[string]bool, len(want))
	err := a.Query(ctx, attachment,
		`SELECT name FROM `+master+` WHERE type = 'table'`,
		func(row adapter.Row) error {
			name, _ := row[0].(string)
			present[name] = true
			return nil
		})
	if err != nil {
		return wrapBackend("verify", err)
	}

	var missing []string
	for _, name := range want {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return enginerr.New("verify", enginerr.KindDatabaseInconsistency,
			fmt.Errorf("%s is missing tables %v", attachment, missing))
	}
	return nil
}

// columnSpec names one expected column of a table, as its CREATE TABLE
// statement declares it: a name and a SQLite storage-class keyword
// (INTEGER, TEXT, REAL, BLOB).
type columnSpec struct {
	name string
	typ  string
}

// verifyColumns checks that table, in the named attachment, has every
// column in want with a matching declared type, via PRAGMA table_info;
// columns beyond want are not reported. This catches schema drift verifyTables cannot: a table
// that exists but has been altered, truncated, or created with the wrong
// shape.
func verifyColumns(ctx context.Context, a adapter.Adapter, attachment, table string, want []columnSpec) error {
	pragma := "PRAGMA table_info(" + table + ")"
	if attachment != "main" {
		pragma = "PRAGMA " + attachment + ".table_info(" + table + ")"
	}

	present := make(map[string]string)
	err := a.Query(ctx, attachment, pragma, func(row adapter.Row) error {
		name, _ := row[1].(string)
		typ, _ := row[2].(string)
		present[name] = typ
		return nil
	})
	if err != nil {
		return wrapBackend("verify", err)
	}

	var bad []string
	for _, c := range want {
		got, ok := present[c.name]
		if !ok {
			bad = append(bad, fmt.Sprintf("%s (missing)", c.name))
		} else if !strings.EqualFold(got, c.typ) {
			bad = append(bad, fmt.Sprintf("%s (want %s, got %s)", c.name, c.typ, got))
		}
	}
	if len(bad) > 0 {
		return enginerr.New("verify", enginerr.KindDatabaseInconsistency,
			fmt.Errorf("%s.%s has mismatched columns: %v", attachment, table, bad))
	}
	return nil
}

// verifyTriggers checks that every trigger name in want exists in the
// named attachment's sqlite_master.
func verifyTriggers(ctx context.Context, a adapter.Adapter, attachment string, want []string) error {
	master := "sqlite_master"
	if attachment != "main" {
		master = attachment + ".sqlite_master"
	}

	present := make(map[string]bool, len(want))
	err := a.Query(ctx, attachment,
		`SELECT name FROM `+master+` WHERE type = 'trigger'`,
		func(row adapter.Row) error {
			name, _ := row[0].(string)
			present[name] = true
			return nil
		})
	if err != nil {
		return wrapBackend("verify", err)
	}

	var missing []string
	for _, name := range want {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return enginerr.New("verify", enginerr.KindDatabaseInconsistency,
			fmt.Errorf("%s is missing triggers %v", attachment, missing))
	}
	return nil
}

// verifyInformationRowCount enforces that Information carries exactly one
// row: zero or more than one is database-inconsistency.
func verifyInformationRowCount(ctx context.Context, a adapter.Adapter, attachment string) error {
	table := "Information"
	if attachment != "main" {
		table = attachment + ".Information"
	}

	count := 0
	err := a.Query(ctx, attachment, `SELECT COUNT(*) FROM `+table, func(row adapter.Row) error {
		switch v := row[0].(type) {
		case int64:
			count = int(v)
		case int:
			count = v
		}
		return nil
	})
	if err != nil {
		return wrapBackend("verify", err)
	}
	return exactlyOneRow("verify", attachment+".Information", count)
}
