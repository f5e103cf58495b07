package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/marcus/jobdesk/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestFirstNonFlagArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "skips leading flags",
			args: []string{"--log-json", "companies"},
			want: "companies",
		},
		{
			name: "all flags",
			args: []string{"-h", "--help"},
			want: "",
		},
		{
			name: "finds command after help",
			args: []string{"--help", "list"},
			want: "list",
		},
		{
			name: "no args",
			args: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstNonFlagArg(tt.args); got != tt.want {
				t.Errorf("firstNonFlagArg(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

// resetFlags puts every flag of c and its subcommands back to its default,
// since the command tree is shared between test runs.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args in dir and returns what it printed on
// stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	var out bytes.Buffer
	output.Stdout = &out
	output.Stderr = io.Discard
	t.Cleanup(func() {
		output.Stdout = os.Stdout
		output.Stderr = os.Stderr
		resetFlags(rootCmd)
	})

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	resetFlags(rootCmd)
	return out.String(), err
}

// initProject creates a seeded project in a temp dir.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := execute(t, dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}
