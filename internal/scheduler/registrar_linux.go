//go:build linux

package scheduler

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/untoldecay/matrix/internal/debug"
	"github.com/untoldecay/matrix/internal/paths"
	"github.com/untoldecay/matrix/internal/types"
)

// crontabRegistrar manages one marked line per task in the invoking
// user's crontab, grounded on BeadsLog's shell-out-and-reconcile style
// for external process state (cmd/bd/daemon_autostart.go).
type crontabRegistrar struct{}

func NewRegistrar() Registrar { return &crontabRegistrar{} }

func managedMarker(taskID string) string {
	return fmt.Sprintf("# matrix:task:%s", taskID)
}

func (r *crontabRegistrar) Register(task *types.Task) error {
	lines, err := readCrontab()
	if err != nil {
		return err
	}

	lines = removeManagedBlock(lines, task.ID)

	logDir, err := paths.DreamerLogsDir()
	if err != nil {
		return fmt.Errorf("scheduler: resolve log dir: %w", err)
	}
	outLog := logDir + "/" + task.ID + ".out.log"
	errLog := logDir + "/" + task.ID + ".err.log"

	exe, err := exec.LookPath("matrix")
	if err != nil {
		exe = "matrix"
	}

	cronLine := fmt.Sprintf("%s %s dreamer run %s >> %s 2>> %s",
		task.CronExpression, exe, task.ID, outLog, errLog)

	lines = append(lines, managedMarker(task.ID), cronLine)

	if err := writeCrontab(lines); err != nil {
		return err
	}
	debug.Logf("scheduler: registered crontab entry for task %s", task.ID)
	return nil
}

func (r *crontabRegistrar) Unregister(taskID string) error {
	lines, err := readCrontab()
	if err != nil {
		return err
	}
	lines = removeManagedBlock(lines, taskID)
	return writeCrontab(lines)
}

func readCrontab() ([]string, error) {
	out, err := exec.Command("crontab", "-l").CombinedOutput()
	if err != nil {
		// An empty/absent crontab exits non-zero; treat it as empty rather
		// than failing registration.
		if strings.Contains(string(out), "no crontab") {
			return nil, nil
		}
		return nil, nil
	}
	return strings.Split(strings.TrimRight(string(out), "\n"), "\n"), nil
}

func writeCrontab(lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	cmd := exec.Command("crontab", "-")
	cmd.Stdin = bytes.NewBufferString(content)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("scheduler: installing crontab: %w: %s", err, out)
	}
	return nil
}

func removeManagedBlock(lines []string, taskID string) []string {
	marker := managedMarker(taskID)
	out := make([]string, 0, len(lines))
	skipNext := false
	for _, line := range lines {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.TrimSpace(line) == marker {
			skipNext = true
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
