// Package qwatch implements a live terminal view of the PBS job queue.
package qwatch

import (
	"context"
	"os"
	"os/user"
	"sync"

	"github.com/marburg-hpc/qwatch/torque"
)

// A JobSource provides the current list of batch jobs.
type JobSource interface {
	QueryJobs(ctx context.Context) ([]torque.Job, error)
}

// A Watcher polls a job source and keeps the most recent successful result
// as the current snapshot.
type Watcher struct {
	source JobSource
	mu     sync.Mutex
	jobs   []torque.Job
}

// NewWatcher returns a Watcher polling the given source.
func NewWatcher(source JobSource) *Watcher {
	return &Watcher{source: source}
}

// Refresh queries the source and replaces the current snapshot with the
// result. On failure the previous snapshot is kept and the error is
// returned.
func (w *Watcher) Refresh(ctx context.Context) error {
	jobs, err := w.source.QueryJobs(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.jobs = jobs
	w.mu.Unlock()

	return nil
}

// Jobs returns the current snapshot.
func (w *Watcher) Jobs() []torque.Job {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]torque.Job(nil), w.jobs...)
}

// OwnedBy returns the jobs owned by the given user, preserving order.
func OwnedBy(jobs []torque.Job, username string) []torque.Job {
	owned := []torque.Job{}

	for _, job := range jobs {
		owner, err := job.Owner()
		if err != nil {
			continue
		}
		if owner == username {
			owned = append(owned, job)
		}
	}

	return owned
}

// CurrentUser returns the name of the user running the process.
func CurrentUser() string {
	if me, err := user.Current(); err == nil {
		return me.Username
	}
	return os.Getenv("USER")
}
