//go:build darwin

package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/untoldecay/matrix/internal/debug"
	"github.com/untoldecay/matrix/internal/paths"
	"github.com/untoldecay/matrix/internal/types"
)

// launchdRegistrar writes one LaunchAgent plist per task and loads it
// with launchctl, grounded on BeadsLog's shell-out-and-reconcile style
// for external process state (cmd/bd/daemon_autostart.go).
type launchdRegistrar struct{}

func NewRegistrar() Registrar { return &launchdRegistrar{} }

func labelFor(taskID string) string {
	return "com.matrix.task." + taskID
}

func plistPath(taskID string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", labelFor(taskID)+".plist"), nil
}

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.Exe}}</string>
		<string>dreamer</string>
		<string>run</string>
		<string>{{.TaskID}}</string>
	</array>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
	<key>StandardOutPath</key>
	<string>{{.OutLog}}</string>
	<key>StandardErrorPath</key>
	<string>{{.ErrLog}}</string>
	<key>StartCalendarInterval</key>
	<array>
{{range .Intervals}}		<dict>
			<key>Minute</key>
			<integer>{{.Minute}}</integer>
			<key>Hour</key>
			<integer>{{.Hour}}</integer>
		</dict>
{{end}}	</array>
</dict>
</plist>
`))

type plistInterval struct{ Minute, Hour int }

type plistData struct {
	Label            string
	Exe              string
	TaskID           string
	WorkingDirectory string
	OutLog           string
	ErrLog           string
	Intervals        []plistInterval
}

func (r *launchdRegistrar) Register(task *types.Task) error {
	_ = r.Unregister(task.ID) // reload-clean: unload any prior version first

	logDir, err := paths.DreamerLogsDir()
	if err != nil {
		return fmt.Errorf("scheduler: resolve log dir: %w", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("scheduler: create log dir: %w", err)
	}

	exe, err := exec.LookPath("matrix")
	if err != nil {
		exe = "matrix"
	}

	intervals, err := cronToCalendarIntervals(task.CronExpression)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	data := plistData{
		Label:            labelFor(task.ID),
		Exe:              exe,
		TaskID:           task.ID,
		WorkingDirectory: task.WorkingDirectory,
		OutLog:           filepath.Join(logDir, task.ID+".out.log"),
		ErrLog:           filepath.Join(logDir, task.ID+".err.log"),
		Intervals:        intervals,
	}

	path, err := plistPath(task.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scheduler: create plist: %w", err)
	}
	if err := plistTemplate.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("scheduler: render plist: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if out, err := exec.Command("launchctl", "load", "-w", path).CombinedOutput(); err != nil {
		return fmt.Errorf("scheduler: launchctl load: %w: %s", err, out)
	}
	debug.Logf("scheduler: registered launchd agent for task %s", task.ID)
	return nil
}

func (r *launchdRegistrar) Unregister(taskID string) error {
	path, err := plistPath(taskID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		_, _ = exec.Command("launchctl", "unload", "-w", path).CombinedOutput()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// cronToCalendarIntervals expands a restricted subset of cron fields
// (exact minute/hour values or "*") into the StartCalendarInterval
// entries launchd expects. Step/range expressions fall back to a
// single "every hour on :00" style error rather than silently firing
// at the wrong cadence.
func cronToCalendarIntervals(expr string) ([]plistInterval, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("invalid cron expression %q", expr)
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("launchd registration requires an exact minute, got %q", fields[0])
	}
	if fields[1] == "*" {
		out := make([]plistInterval, 0, 24)
		for h := 0; h < 24; h++ {
			out = append(out, plistInterval{Minute: minute, Hour: h})
		}
		return out, nil
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("launchd registration requires an exact hour or \"*\", got %q", fields[1])
	}
	return []plistInterval{{Minute: minute, Hour: hour}}, nil
}
