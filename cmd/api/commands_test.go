package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "todos.db"))
	t.Setenv("LOG_LEVEL", "error")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"title"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"A"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"  "}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"B"}))
	path := filepath.Join(dir, "todos.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"import", path})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "imported 2 todos\n", out.String())
}

func TestImportCommand_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import"})
	assert.Error(t, cmd.Execute())
}

func TestMigrateCommand_SQLite(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "todos.db"))
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	assert.NoError(t, cmd.Execute())
}

func TestConfigErrorFails(t *testing.T) {
	t.Setenv("STORE_DRIVER", "nope")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	assert.Error(t, cmd.Execute())
}
