package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/drawtopia/internal/pdfdoc/pdfdoctest"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has metadata", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "drawtopia" {
			t.Errorf("expected use 'drawtopia', got %q", cmd.Use)
		}
		if cmd.Short == "" || cmd.Long == "" || cmd.Version == "" {
			t.Error("expected short, long and version to be set")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" || flag.DefValue != "false" {
			t.Errorf("verbose flag = -%s default %s", flag.Shorthand, flag.DefValue)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"annotate": false, "info": false, "measure": false,
			"history": false, "init": false, "version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage || !cmd.SilenceErrors {
			t.Error("expected SilenceUsage and SilenceErrors to be true")
		}
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writePDF writes a generated test PDF into dir.
func writePDF(t *testing.T, dir, name string, opts pdfdoctest.Options) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pdfdoctest.New(opts), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeFile writes content into dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}
