package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

func TestWorkerCommandRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "w.go")
	require.NoError(t, os.WriteFile(path, []byte("a\n\nb\nc\n"), 0o644))

	payload, err := json.Marshal([]scan.WorkItem{{Path: path, Ext: ".go"}})
	require.NoError(t, err)

	var out bytes.Buffer

	cmd := NewWorkerCommand()
	cmd.SetIn(bytes.NewReader(payload))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var partial tally.Partial
	require.NoError(t, json.Unmarshal(out.Bytes(), &partial))

	assert.Equal(t, int64(3), partial.Lines)
	assert.Equal(t, int64(1), partial.FilesByExt[".go"])
}

func TestWorkerCommandBadInput(t *testing.T) {
	t.Parallel()

	cmd := NewWorkerCommand()
	cmd.SetIn(bytes.NewReader([]byte("garbage")))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
