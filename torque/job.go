package torque

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoField is returned when a field path does not resolve in a job
	// record.
	ErrNoField = errors.New("no such field")

	// ErrBadValue is returned when a field value does not follow the qstat
	// textual convention it is expected to.
	ErrBadValue = errors.New("bad field value")
)

// A Job is a read-only view over one job record from qstat -x.
type Job struct {
	rec Record
}

// Field resolves a dotted path like "resources_used.walltime" into the
// underlying record. A path that does not resolve to a leaf string returns
// an error wrapping ErrNoField.
func (job Job) Field(path string) (string, error) {
	return job.rec.lookup(path)
}

// Name returns the job name.
func (job Job) Name() (string, error) {
	return job.Field("job_name")
}

// ID returns the job identifier.
func (job Job) ID() (string, error) {
	return job.Field("job_id")
}

// Queue returns the queue the job was submitted to.
func (job Job) Queue() (string, error) {
	return job.Field("queue")
}

// Host returns the execution host of the job.
func (job Job) Host() (string, error) {
	return job.Field("exec_host")
}

// Time returns the walltime used by the job.
func (job Job) Time() (string, error) {
	return job.Field("resources_used.walltime")
}

// Owner returns the job owner with the @host suffix removed. An owner
// without the suffix is returned unchanged.
func (job Job) Owner() (string, error) {
	owner, err := job.Field("job_owner")
	if err != nil {
		return "", err
	}

	if pos := strings.Index(owner, "@"); pos != -1 {
		owner = owner[:pos]
	}

	return owner, nil
}

// Memory returns the memory usage of the job formatted in kB, MB or GB.
// qstat reports memory as a number of kilobytes followed by a two-character
// unit suffix; a value that does not follow this convention returns an error
// wrapping ErrBadValue.
func (job Job) Memory() (string, error) {
	raw, err := job.Field("resources_used.mem")
	if err != nil {
		return "", err
	}

	return formatMemory(raw)
}

func formatMemory(raw string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("memory %q: %w", raw, ErrBadValue)
	}

	kb, err := strconv.ParseInt(raw[:len(raw)-2], 10, 64)
	if err != nil {
		return "", fmt.Errorf("memory %q: %w", raw, ErrBadValue)
	}

	mem := float64(kb)

	switch {
	case mem >= 1024*1024:
		return fmt.Sprintf("%.1f GB", mem/(1024*1024)), nil

	case mem >= 1024:
		return fmt.Sprintf("%.1f MB", mem/1024), nil
	}

	return fmt.Sprintf("%.1f kB", mem), nil
}
