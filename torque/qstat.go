package torque

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// A Client queries batch jobs by running the qstat command.
type Client struct {
	// Command is the argument vector of the status command. Defaults to
	// "qstat -x".
	Command []string

	// Timeout bounds a single invocation. Defaults to 10 seconds.
	Timeout time.Duration
}

// NewClient returns a Client invoking the named qstat executable.
func NewClient(path string) *Client {
	return &Client{Command: []string{path, "-x"}}
}

// QueryJobs runs the status command, captures its standard output in full
// and parses it into jobs. The command failing to start, exiting abnormally
// or producing unparseable output all return an error without partial
// results.
func (c *Client) QueryJobs(ctx context.Context) ([]Job, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %v: %s", c.Command[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %v", c.Command[0], err)
	}

	return ParseJobs(stdout.Bytes())
}
