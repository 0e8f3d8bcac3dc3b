package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// matrixCmd runs the cobra root command in-process against a fresh
// MATRIX_HOME for each script's workdir, rather than exec'ing a built
// binary — the same "drive the real command tree, not a rebuilt copy"
// approach BeadsLog's own CLI tests use with cobra's ExecuteC.
func matrixCmd() script.Cmd {
	return script.Command(
		script.CmdUsage{
			Summary: "run the matrix CLI",
			Args:    "args...",
		},
		func(s *script.State, args ...string) (script.WaitFunc, error) {
			var stdout, stderr bytes.Buffer
			if home, ok := s.LookupEnv("MATRIX_HOME"); ok {
				os.Setenv("MATRIX_HOME", s.ExpandEnv(home, false))
			}
			rootCmd.SetArgs(args)
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&stderr)
			runErr := rootCmd.Execute()
			return func(*script.State) (string, string, error) {
				return stdout.String(), stderr.String(), runErr
			}, nil
		},
	)
}

func newTestEngine() *script.Engine {
	e := &script.Engine{
		Cmds:  script.DefaultCmds(),
		Conds: script.DefaultConds(),
	}
	e.Cmds["matrix"] = matrixCmd()
	return e
}

// TestScripts runs every testdata/*.txt script against the matrix CLI,
// each in its own temp workdir with MATRIX_HOME pointed inside it so
// scripts never touch a real developer's store.
func TestScripts(t *testing.T) {
	scripttest.Test(t, context.Background(), newTestEngine, []string{"MATRIX_HOME=${WORK}/home"}, "testdata/*.txt")
}
