package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"webshot/internal/config"
)

// execute runs the root command with a fresh flag state and captured output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fl = config.Flags{}
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInternalPrintFlags(t *testing.T) {
	args := []string{
		"--internal-print-flags",
		"--type", "pdf",
		"--inset", "10,-15,-15,25",
		"--clip", "10,30,300,1024",
		"--pdf-margin", "1in,0.5in,2cm,10mm",
		"--no-javascript",
	}

	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)
	require.Equal(t, first, second, "diagnostic dump must be deterministic")

	var dump struct {
		JavaScript bool `json:"javascript"`
		Inset      struct {
			Top, Right, Bottom, Left int
		} `json:"inset"`
		Clip struct {
			X, Y, Width, Height int
		} `json:"clip"`
		PDF struct {
			Format string            `json:"format"`
			Margin map[string]string `json:"margin"`
		} `json:"pdf"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &dump))
	require.False(t, dump.JavaScript)
	require.Equal(t, 10, dump.Inset.Top)
	require.Equal(t, -15, dump.Inset.Right)
	require.Equal(t, -15, dump.Inset.Bottom)
	require.Equal(t, 25, dump.Inset.Left)
	require.Equal(t, 300, dump.Clip.Width)
	require.Equal(t, "letter", dump.PDF.Format)
	require.Equal(t, "2cm", dump.PDF.Margin["bottom"])
}

func TestInternalPrintFlagsDefaults(t *testing.T) {
	out, err := execute(t, "--internal-print-flags")
	require.NoError(t, err)

	var dump map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	require.Equal(t, true, dump["javascript"])
	require.Equal(t, true, dump["defaultBackground"])
	require.Equal(t, true, dump["blockAds"])
	require.Equal(t, "png", dump["type"])
	require.NotContains(t, dump, "pdf", "pdf sub-object only for pdf type")
}

func TestListDevices(t *testing.T) {
	out, err := execute(t, "--list-devices")
	require.NoError(t, err)
	require.Contains(t, out, "iPhone X")
	require.Contains(t, out, "Pixel 2")
}

func TestMalformedFlagFailsBeforeCapture(t *testing.T) {
	_, err := execute(t, "--internal-print-flags", "--clip", "1,2")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--clip")
}

func TestUnknownDeviceFails(t *testing.T) {
	_, err := execute(t, "--emulate-device", "Commodore 64", "https://example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "list-devices")
}

func TestHelpMentionsStreaming(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "stdout"))
}
