package oursh

import (
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"pkt.systems/pslog"
)

// JobState is the last observed state of a background job.
type JobState int

// Job states.
const (
	JobRunning JobState = iota
	JobExited
	JobSignaled
)

// JobStatus is what a status query observed for a process.
type JobStatus struct {
	State  JobState
	Code   int // exit code when State is JobExited
	Signal int // signal number when State is JobSignaled
}

// Running reports whether the job has not terminated yet.
func (s JobStatus) Running() bool {
	return s.State == JobRunning
}

func (s JobStatus) String() string {
	switch s.State {
	case JobExited:
		return fmt.Sprintf("Done (exit %d)", s.Code)
	case JobSignaled:
		return fmt.Sprintf("Killed (%s)", signalName(s.Signal))
	default:
		return "Running"
	}
}

// Job is a background process started by the evaluator.
type Job struct {
	ID      int
	Pid     int
	Command string
	Status  JobStatus
}

// StatusQuerier asks the operating system for the status of pid without
// blocking. A process that has not changed state reports JobRunning.
type StatusQuerier interface {
	Query(pid int) (JobStatus, error)
}

// StatusQuerierFunc adapts a function to StatusQuerier.
type StatusQuerierFunc func(pid int) (JobStatus, error)

// Query calls f(pid).
func (f StatusQuerierFunc) Query(pid int) (JobStatus, error) {
	return f(pid)
}

// WaitStatusQuerier reaps children with a non-blocking wait.
var WaitStatusQuerier StatusQuerier = StatusQuerierFunc(waitStatus)

var (
	doneColor  = color.New(color.FgGreen)
	killColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// JobTable tracks background jobs between prompts. It is owned by the
// interactive session and lent to the evaluator while a line runs; it is
// not safe for concurrent use.
type JobTable struct {
	querier StatusQuerier
	jobs    []*Job
	nextID  int
	logger  pslog.Logger
}

// NewJobTable creates an empty table polling through q. A nil q uses
// WaitStatusQuerier.
func NewJobTable(q StatusQuerier) *JobTable {
	if q == nil {
		q = WaitStatusQuerier
	}
	return &JobTable{querier: q, nextID: 1, logger: discardLogger()}
}

// SetLogger sets the logger used for status query failures.
func (t *JobTable) SetLogger(l pslog.Logger) {
	if l != nil {
		t.logger = l
	}
}

// Register starts tracking pid under the next job id.
func (t *JobTable) Register(pid int, command string) *Job {
	job := &Job{ID: t.nextID, Pid: pid, Command: command}
	t.nextID++
	t.jobs = append(t.jobs, job)
	t.logger.Debug("job registered", "job", job.ID, "pid", pid, "command", command)
	return job
}

// Poll queries every job once, writes a notice to w for each job that
// finished and removes it. Jobs whose status cannot be queried are
// reported and dropped. It returns the jobs removed in this poll.
func (t *JobTable) Poll(w io.Writer) []*Job {
	var finished []*Job
	t.jobs = slices.DeleteFunc(t.jobs, func(job *Job) bool {
		status, err := t.querier.Query(job.Pid)
		if err != nil {
			t.logger.With("err", err).Warn("job status query failed", "job", job.ID, "pid", job.Pid)
			errorColor.Fprintf(w, "oursh: job [%d] (pid %d): %v\n", job.ID, job.Pid, err)
			finished = append(finished, job)
			return true
		}
		job.Status = status
		if status.Running() {
			return false
		}
		notice := doneColor
		if status.State == JobSignaled {
			notice = killColor
		}
		notice.Fprintf(w, "[%d] %s pid %d  %s\n", job.ID, status, job.Pid, job.Command)
		finished = append(finished, job)
		return true
	})
	return finished
}

// List returns the tracked jobs in id order.
func (t *JobTable) List() []Job {
	out := make([]Job, len(t.jobs))
	for i, job := range t.jobs {
		out[i] = *job
	}
	return out
}

// Len returns the number of tracked jobs.
func (t *JobTable) Len() int {
	return len(t.jobs)
}
