package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mintlabs/mint-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mint", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"serve"},
		{"init"},
		{"user", "add"},
		{"user", "list"},
		{"sample", "add"},
		{"sample", "list"},
		{"token"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "yaml", "init", "--db", filepath.Join(t.TempDir(), "mint.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestUserWorkflow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mint.db")

	out, err := run(t, "init", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "Database initialized\n", out)

	out, err = run(t, "user", "add", "Ada", "ada@example.com", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "User Ada added with id 1\n", out)

	_, err = run(t, "user", "add", "", "a@b.com", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	out, err = run(t, "user", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var users []models.UserRow
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	assert.Equal(t, []models.UserRow{{ID: 1, Name: "Ada", Email: "ada@example.com"}}, users)

	out, err = run(t, "user", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
}

func TestSampleWorkflow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mint.db")

	_, err := run(t, "init", "--db", db)
	require.NoError(t, err)

	out, err := run(t, "sample", "add", "1700000000000", "42.5", "ch1", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "Sample 1 recorded at 2023-11-14T22:13:20Z\n", out)

	_, err = run(t, "sample", "add", "--db", db, "--", "-1", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timestamp")

	_, err = run(t, "sample", "add", "1700000000000", "NaN", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value must be finite")

	_, err = run(t, "sample", "add", "soon", "1", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timestamp")

	out, err = run(t, "sample", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var samples []models.SampleRow
	require.NoError(t, json.Unmarshal([]byte(out), &samples))
	require.Len(t, samples, 1)
	assert.Equal(t, "2023-11-14T22:13:20Z", samples[0].Timestamp)
	assert.Equal(t, 42.5, samples[0].Value)
	assert.Equal(t, "ch1", samples[0].Metadata)
}

func TestListWithoutInit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "mint.db")

	_, err := run(t, "user", "list", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "token")
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	out, err := run(t, "token", "--source", "headset")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
