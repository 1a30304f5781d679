package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	pg, err := fs.ReadFile(PostgresFS, "postgres/001_invite_records.sql")
	require.NoError(t, err)
	assert.Contains(t, string(pg), "CREATE TABLE IF NOT EXISTS invite_records")

	ch, err := fs.ReadFile(ClickhouseFS, "clickhouse/001_eligibility_checks.sql")
	require.NoError(t, err)
	assert.Contains(t, string(ch), "CREATE TABLE IF NOT EXISTS eligibility_checks")
	assert.NoError(t, validateNoSemicolonInStrings(string(ch)))
}

func TestSplitStatements(t *testing.T) {
	sql := `
-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

CREATE TABLE b (y UInt8) ENGINE = Memory;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE b"))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'it''s fine';`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'a;b';`))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/gate")
	require.NoError(t, err)
	assert.Equal(t, "gate", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
