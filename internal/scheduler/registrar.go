package scheduler

import "github.com/untoldecay/matrix/internal/types"

// Registrar registers and unregisters a Task with the host platform's
// native periodic-job facility: the per-user crontab on Linux, a
// launchd user agent on macOS (spec.md §4.11 add()/list/remove).
type Registrar interface {
	Register(task *types.Task) error
	Unregister(taskID string) error
}
