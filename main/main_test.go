package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	script := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(script, []byte(sampleScript), 0o600))
	_, want := encodeSample(t)

	for _, mode := range [][]string{nil, {"--frame"}, {"--zstd"}} {
		out := filepath.Join(dir, "out.bin")
		args := append([]string{"encode", "-f", script, "-o", out, "--initial-size", "8", "--log-level", "warn"}, mode...)
		_, err := execute(t, "", args...)
		require.NoError(t, err, mode)

		decodeArgs := []string{"decode", "-f", script, "-i", out}
		if mode != nil {
			decodeArgs = append(decodeArgs, "--frame")

			info, err := execute(t, "", "inspect", out)
			require.NoError(t, err)
			assert.Contains(t, info, "version:  1")
		} else {
			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		decoded, err := execute(t, "", decodeArgs...)
		require.NoError(t, err, mode)
		assert.Len(t, strings.Split(strings.TrimSpace(decoded), "\n"), 12)
		assert.Contains(t, decoded, "héllo")
	}
}

func TestEncodeHexFromStdin(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "items: [{type: i32, value: -1}, {type: u8, value: 1}]", "encode", "--hex")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString([]byte{0xff, 0xff, 0xff, 0xff, 0x01}), strings.TrimSpace(out))
}

func TestEncodeMaxSize(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "items: [{type: u64, value: 1}]", "encode", "--initial-size", "4", "--max-size", "4")
	require.Error(t, err)
}

func TestInspectRejectsNonFrame(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "raw.bin")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{1}, 32), 0o600))

	_, err := execute(t, "", "inspect", path)
	require.Error(t, err)
}

func TestDecodeRequiresScript(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "", "decode")
	require.Error(t, err)
}
