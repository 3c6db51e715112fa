package torque

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Client_QueryJobs_ParsesCommandOutput(t *testing.T) {
	client := &Client{Command: []string{
		"sh", "-c",
		`echo '<Data><Job><Job_Id>101</Job_Id><Job_Owner>alice@n1</Job_Owner></Job></Data>'`,
	}}

	jobs, err := client.QueryJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	id, err := jobs[0].ID()
	require.NoError(t, err)
	assert.Equal(t, "101", id)
}

func Test_Client_QueryJobs_CommandFails(t *testing.T) {
	client := &Client{Command: []string{"sh", "-c", "echo boom >&2; exit 1"}}

	_, err := client.QueryJobs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func Test_Client_QueryJobs_CommandMissing(t *testing.T) {
	client := &Client{Command: []string{"qwatch-no-such-command"}}

	_, err := client.QueryJobs(context.Background())
	assert.Error(t, err)
}

func Test_Client_QueryJobs_MalformedOutput(t *testing.T) {
	client := &Client{Command: []string{"sh", "-c", `echo '<Data><Job>'`}}

	_, err := client.QueryJobs(context.Background())
	assert.Error(t, err)
}

func Test_NewClient_DefaultsToExtendedOutput(t *testing.T) {
	client := NewClient("qstat")
	assert.Equal(t, []string{"qstat", "-x"}, client.Command)
}
