package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`
		create table users (id text primary key);
		insert into users values ('semi;colon');
	`)
	if len(stmts) != 2 {
		t.Fatalf("statements = %d, want 2: %q", len(stmts), stmts)
	}
	if got := stmts[1]; !strings.Contains(got, "semi;colon") {
		t.Fatalf("second statement lost quoted semicolon: %q", got)
	}
}

func TestCollectSQLOrdersLexically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_shares.up.sql", "0001_init.up.sql", "0001_init.down.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o640); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files, err := collectSQL(dir, ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	if files[0].Base != "0001_init.up.sql" || files[1].Base != "0002_shares.up.sql" {
		t.Fatalf("order = %q, %q", files[0].Base, files[1].Base)
	}
}

func TestCollectSQLMissingDir(t *testing.T) {
	files, err := collectSQL(filepath.Join(t.TempDir(), "absent"), ".sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if files != nil {
		t.Fatalf("files = %v, want nil", files)
	}
}
