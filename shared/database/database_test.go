package database

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"postgres", Postgres, false},
		{"PostgreSQL", Postgres, false},
		{" sqlite ", SQLite, false},
		{"sqlite3", SQLite, false},
		{"mysql", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "UPDATE patients SET name = ?, email = ? WHERE id = ?"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "UPDATE patients SET name = $1, email = $2 WHERE id = $3", Postgres.Rebind(q))
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	emailErr := &pq.Error{Code: "23505", Constraint: "patients_email_key"}
	pkErr := &pq.Error{Code: "23505", Constraint: "patients_pkey"}
	fkErr := &pq.Error{Code: "23503"}

	assert.True(t, Postgres.IsUniqueViolation(emailErr, "patients", "email"))
	assert.True(t, Postgres.IsUniqueViolation(errors.Join(errors.New("insert"), emailErr), "patients", "email"))
	assert.False(t, Postgres.IsUniqueViolation(pkErr, "patients", "email"))
	assert.True(t, Postgres.IsUniqueViolation(pkErr, "", ""))
	assert.False(t, Postgres.IsUniqueViolation(fkErr, "", ""))
	assert.False(t, Postgres.IsUniqueViolation(nil, "", ""))
}

func TestSQLiteMigrationsAndUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations := fstest.MapFS{
		"0001_people.sql": {Data: []byte(`-- +migrate Up
CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE
);
-- +migrate Down
DROP TABLE people;
`)},
		"0002_seed.sql": {Data: []byte(`INSERT INTO people (id, email) VALUES ('p1', 'a@x.com');`)},
		"README.md":     {Data: []byte("ignored")},
	}

	require.NoError(t, ApplyMigrations(ctx, db, SQLite, migrations))
	// Second run must not re-apply the seed.
	require.NoError(t, ApplyMigrations(ctx, db, SQLite, migrations))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	_, err = db.ExecContext(ctx, "INSERT INTO people (id, email) VALUES (?, ?)", "p2", "a@x.com")
	require.Error(t, err)
	assert.True(t, SQLite.IsUniqueViolation(err, "people", "email"))
	assert.False(t, SQLite.IsUniqueViolation(err, "people", "id"))

	_, err = db.ExecContext(ctx, "INSERT INTO people (id, email) VALUES (?, ?)", "p1", "b@x.com")
	require.Error(t, err)
	assert.True(t, SQLite.IsUniqueViolation(err, "people", "id"))
	assert.False(t, SQLite.IsUniqueViolation(err, "people", "email"))
}

func TestMigrationsSubtree(t *testing.T) {
	tree := fstest.MapFS{
		"postgres/0001_init.sql": {Data: []byte("SELECT 1;")},
		"sqlite/0001_init.sql":   {Data: []byte("SELECT 2;")},
	}
	sub, err := Migrations(tree, SQLite)
	require.NoError(t, err)
	data, err := fs.ReadFile(sub, "0001_init.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2;", string(data))
}

func TestExtractUpMigration(t *testing.T) {
	assert.Equal(t, "\nCREATE TABLE a(x);\n", ExtractUpMigration("-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;"))
	assert.Equal(t, "CREATE TABLE b(x);", ExtractUpMigration("CREATE TABLE b(x);"))
}

func TestMillisRoundTrip(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 12, 30, 15, 123_000_000, time.FixedZone("X", 3600))
	assert.True(t, FromMillis(ToMillis(ts)).Equal(ts))
	assert.Equal(t, time.UTC, FromMillis(ToMillis(ts)).Location())
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), SQLite, "")
	assert.Error(t, err)
}
