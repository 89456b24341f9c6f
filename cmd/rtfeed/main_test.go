package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/rtfeed/internal/adapters/sqlite"
	"github.com/bft-labs/rtfeed/internal/cliconfig"
	"github.com/bft-labs/rtfeed/internal/domain"
)

// isolate keeps a developer's own config file and env out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "RTFEED_") {
			t.Setenv(strings.SplitN(kv, "=", 2)[0], "")
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestRoot_RequiresConnectionSettings(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no host", args: []string{"--api-key", "k", "--table", "settlements"}, wantErr: "host is required"},
		{name: "no api key", args: []string{"--host", "h.example", "--table", "settlements"}, wantErr: "api-key is required"},
		{name: "no table", args: []string{"--host", "h.example", "--api-key", "k"}, wantErr: "table is required"},
		{
			name:    "missing explicit config file",
			args:    []string{"--config", "/nonexistent/rtfeed.toml"},
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `host: file.example
api_key: file-key
table: file_table
event: UPDATE
`)
	t.Setenv("RTFEED_TABLE", "env_table")
	t.Setenv("RTFEED_EVENT", "DELETE")

	cfg := cliconfig.DefaultConfig()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "")
	cmd.Flags().StringVar(&cfg.Table, "table", cfg.Table, "")
	cmd.Flags().StringVar(&cfg.Event, "event", cfg.Event, "")
	require.NoError(t, cmd.ParseFlags([]string{"--event", "INSERT"}))

	require.NoError(t, loadConfig(cmd, &cfg, path))

	assert.Equal(t, "file.example", cfg.Host)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "env_table", cfg.Table)
	assert.Equal(t, "INSERT", cfg.Event)
	assert.Equal(t, "public", cfg.Schema)
}

const settlementSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "integer"},
    "amount": {"type": "number"}
  },
  "required": ["id", "amount"],
  "additionalProperties": false
}`

func TestValidateCmd(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", settlementSchema)

	t.Run("valid", func(t *testing.T) {
		data := writeFile(t, dir, "ok.json", `{"id": 1, "amount": 12.5}`)
		out, err := execute(t, "validate", schemaPath, data)
		require.NoError(t, err)
		assert.Equal(t, "valid\n", out)
	})

	t.Run("invalid", func(t *testing.T) {
		data := writeFile(t, dir, "bad.json", `{"id": 1, "amount": 12.5, "memo": "x"}`)
		out, err := execute(t, "validate", schemaPath, data)
		require.ErrorIs(t, err, errInvalidPayload)
		assert.Contains(t, out, "data must NOT have additional properties: memo")
	})

	t.Run("malformed data", func(t *testing.T) {
		data := writeFile(t, dir, "broken.json", `{"id": `)
		_, err := execute(t, "validate", schemaPath, data)
		require.ErrorIs(t, err, domain.ErrMalformedFrame)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "validate", schemaPath, filepath.Join(dir, "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read data")
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := execute(t, "validate", schemaPath)
		require.Error(t, err)
	})
}

func seedJournal(t *testing.T, path string, at ...time.Time) {
	t.Helper()
	j, err := sqlite.Open(path)
	require.NoError(t, err)
	defer j.Close()

	for i, ts := range at {
		raw := `{"topic":"realtime:public-settlements-changes","event":"postgres_changes","payload":{"data":{"record":{"id":` +
			strconv.Itoa(i+1) + `}}},"ref":null}`
		msg, err := domain.DecodeMessage([]byte(raw))
		require.NoError(t, err)
		_, err = j.Append(context.Background(), msg, ts)
		require.NoError(t, err)
	}
}

func TestJournalRecentCmd(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "feed.db")
	now := time.Now()
	seedJournal(t, path, now.Add(-2*time.Minute), now.Add(-time.Minute), now)

	out, err := execute(t, "journal", "recent", "--journal", path, "--limit", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first journalLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.EqualValues(t, 3, first.ID)
	assert.Equal(t, "postgres_changes", first.Event)
	assert.Equal(t, "realtime:public-settlements-changes", first.Topic)
	assert.Contains(t, string(first.Frame), `"id":3`)
}

func TestJournalPruneCmd(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "feed.db")
	now := time.Now()
	seedJournal(t, path, now.Add(-48*time.Hour), now.Add(-30*time.Hour), now)

	out, err := execute(t, "journal", "prune", "--journal", path, "--older-than", "24h")
	require.NoError(t, err)
	assert.Equal(t, "pruned 2 entries\n", out)

	j, err := sqlite.Open(path)
	require.NoError(t, err)
	defer j.Close()
	n, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestJournalCmd_RequiresPath(t *testing.T) {
	isolate(t)

	_, err := execute(t, "journal", "recent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no journal configured")

	_, err = execute(t, "journal", "prune", "--journal", "x.db", "--older-than", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}
