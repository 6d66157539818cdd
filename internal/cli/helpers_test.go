package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const schemaCUE = `package schemas

record: Pair: {
	fields: {
		"1:first":  "Name"
		"2:second": "Set<Tag>"
		"note?":    "string"
	}
	readonly: ["first"]
}

record: Name: {
	compact: prefix: "name:"
	fields: "1:value": "string"
}

record: Tag: {
	compact: true
	fields: "1:value": "string"
}

record: Box: {
	params: T: "record"
	fields: "1:item": "T"
}
`

const playlistYAML = `record:
  Playlist:
    fields:
      tracks: int[]
      owner?: Name
`

// writeFiles creates a temp dir holding files (name -> content).
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

// schemaDir writes the standard five-record schema directory.
func schemaDir(t *testing.T) string {
	t.Helper()
	return writeFiles(t, map[string]string{
		"schema.cue":    schemaCUE,
		"playlist.yaml": playlistYAML,
	})
}

// execute runs cmd with args and returns what it printed to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData decodes a JSON CLIResponse and its data into data.
func decodeData(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if data != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, data))
	}
	return resp
}
