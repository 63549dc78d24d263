package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/chat-session/testutil"
	"github.com/spf13/cobra"
)

// resetFlags restores command flag variables between runs of the shared rootCmd
func resetFlags() {
	cfgFile = ""
	sendNew = false
	deleteYes = false
	limit = 0
	showRender = false
	listSearch = ""
	format = "jsonl"
	outputDir = "./exports"
	sessionID = ""
	exportAll = false
	inspectFormat = "text"
	inspectSampleRows = 5
	healthcheckVerbose = false

	// cobra keeps --help and --version set on the command between Execute calls
	resetBuiltinFlags(rootCmd)
}

func resetBuiltinFlags(c *cobra.Command) {
	for _, name := range []string{"help", "version"} {
		if f := c.Flags().Lookup(name); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
	for _, sub := range c.Commands() {
		resetBuiltinFlags(sub)
	}
}

type testEnv struct {
	server    *testutil.FakeServer
	statePath string
	apiURL    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	server := testutil.NewFakeServer(t)
	return &testEnv{
		server:    server,
		statePath: filepath.Join(testutil.CreateTempDir(t), "state.db"),
		apiURL:    server.URL,
	}
}

// run executes the CLI against the env's fake server and state database
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	full := append([]string{
		"--api-url", e.apiURL,
		"--state", e.statePath,
		"--timeout", "5s",
		"--log-format", "text",
		"--log-level", "info",
	}, args...)
	rootCmd.SetArgs(full)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return stdout.String(), err
}

// mustRun is run for commands expected to succeed
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}
