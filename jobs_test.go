package oursh

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier answers status queries from a map; pids not in the map are
// still running.
type fakeQuerier struct {
	status  map[int]JobStatus
	err     map[int]error
	queries []int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{status: map[int]JobStatus{}, err: map[int]error{}}
}

func (f *fakeQuerier) Query(pid int) (JobStatus, error) {
	f.queries = append(f.queries, pid)
	if err, ok := f.err[pid]; ok {
		return JobStatus{}, err
	}
	if s, ok := f.status[pid]; ok {
		return s, nil
	}
	return JobStatus{State: JobRunning}, nil
}

func TestJobTablePoll(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	table := NewJobTable(q)

	job := table.Register(4242, "sleep 1")
	assert.Equal(t, 1, job.ID)
	second := table.Register(4343, "sleep 100")
	assert.Equal(t, 2, second.ID)

	var out bytes.Buffer
	assert.Empty(t, table.Poll(&out), "nothing finished yet")
	assert.Empty(t, out.String())
	assert.Equal(t, 2, table.Len())

	q.status[4242] = JobStatus{State: JobExited, Code: 0}
	finished := table.Poll(&out)
	require.Len(t, finished, 1)
	assert.Equal(t, 4242, finished[0].Pid)
	assert.Contains(t, out.String(), "[1]")
	assert.Contains(t, out.String(), "pid 4242")
	assert.Contains(t, out.String(), "Done (exit 0)")
	assert.Contains(t, out.String(), "sleep 1")

	out.Reset()
	assert.Empty(t, table.Poll(&out), "a finished job is reported once")
	assert.Empty(t, out.String())
	assert.Equal(t, []Job{{ID: 2, Pid: 4343, Command: "sleep 100", Status: JobStatus{State: JobRunning}}}, table.List())
	assert.Equal(t, 3, table.Register(1, "x").ID, "ids are not reused")
}

func TestJobTableSignaled(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	table := NewJobTable(q)
	table.Register(10, "yes")
	q.status[10] = JobStatus{State: JobSignaled, Signal: 9}

	var out bytes.Buffer
	finished := table.Poll(&out)
	require.Len(t, finished, 1)
	assert.Equal(t, JobSignaled, finished[0].Status.State)
	assert.Contains(t, out.String(), "Killed (")
	assert.Equal(t, 0, table.Len())
}

func TestJobTableQueryError(t *testing.T) {
	t.Parallel()

	q := newFakeQuerier()
	table := NewJobTable(q)
	table.Register(77, "lost")
	q.err[77] = errors.New("no child processes")

	var out bytes.Buffer
	finished := table.Poll(&out)
	require.Len(t, finished, 1)
	assert.Contains(t, out.String(), "job [1] (pid 77): no child processes")
	assert.Equal(t, 0, table.Len(), "jobs that cannot be queried are dropped")

	table.Poll(&out)
	assert.Equal(t, []int{77}, q.queries)
}

func TestJobStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Running", JobStatus{}.String())
	assert.Equal(t, "Done (exit 3)", JobStatus{State: JobExited, Code: 3}.String())
	assert.True(t, JobStatus{}.Running())
	assert.False(t, JobStatus{State: JobExited}.Running())
}
