package qwatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/marburg-hpc/qwatch/torque"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves a fixed job list, or a fixed error.
type stubSource struct {
	jobs []torque.Job
	err  error
}

func (s *stubSource) QueryJobs(ctx context.Context) ([]torque.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.jobs, nil
}

// makeJobs builds jobs owned by the given users, one per user, by parsing a
// synthetic qstat document.
func makeJobs(t *testing.T, owners ...string) []torque.Job {
	t.Helper()

	var doc strings.Builder
	doc.WriteString("<Data>")
	for i, owner := range owners {
		fmt.Fprintf(&doc, "<Job><Job_Id>%d.head</Job_Id><Job_Owner>%s</Job_Owner></Job>", 100+i, owner)
	}
	doc.WriteString("</Data>")

	jobs, err := torque.ParseJobs([]byte(doc.String()))
	require.NoError(t, err)
	require.Len(t, jobs, len(owners))

	return jobs
}

func owners(t *testing.T, jobs []torque.Job) []string {
	t.Helper()

	names := []string{}
	for _, job := range jobs {
		owner, err := job.Owner()
		require.NoError(t, err)
		names = append(names, owner)
	}
	return names
}

func Test_Watcher_RefreshReplacesSnapshot(t *testing.T) {
	source := &stubSource{jobs: makeJobs(t, "alice@n1")}
	watch := NewWatcher(source)

	require.NoError(t, watch.Refresh(context.Background()))
	assert.Equal(t, []string{"alice"}, owners(t, watch.Jobs()))

	source.jobs = makeJobs(t, "bob@n2", "carol@n3")

	require.NoError(t, watch.Refresh(context.Background()))
	assert.Equal(t, []string{"bob", "carol"}, owners(t, watch.Jobs()))
}

func Test_Watcher_FailedRefreshKeepsSnapshot(t *testing.T) {
	source := &stubSource{jobs: makeJobs(t, "alice@n1", "bob@n2")}
	watch := NewWatcher(source)

	require.NoError(t, watch.Refresh(context.Background()))

	source.err = errors.New("qstat: not found")

	err := watch.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners(t, watch.Jobs()),
		"failed poll must not clear the snapshot")
}

func Test_OwnedBy_FiltersPreservingOrder(t *testing.T) {
	jobs := makeJobs(t, "alice@n1", "bob@n2", "alice@n3", "carol@n4")

	owned := OwnedBy(jobs, "alice")
	assert.Equal(t, []string{"alice", "alice"}, owners(t, owned))

	id0, err := owned[0].ID()
	require.NoError(t, err)
	id1, err := owned[1].ID()
	require.NoError(t, err)
	assert.Equal(t, "100.head", id0)
	assert.Equal(t, "102.head", id1)
}

func Test_OwnedBy_Idempotent(t *testing.T) {
	jobs := makeJobs(t, "alice@n1", "bob@n2", "alice@n3")

	once := OwnedBy(jobs, "alice")
	twice := OwnedBy(once, "alice")
	assert.Equal(t, once, twice)
}

func Test_OwnedBy_NoMatch(t *testing.T) {
	jobs := makeJobs(t, "alice@n1", "bob@n2")
	assert.Empty(t, OwnedBy(jobs, "mallory"))
}
