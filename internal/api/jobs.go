package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/youruser/sonicstencil/internal/deck"
)

type JobState string

const (
	JobRunning  JobState = "running"
	JobDone     JobState = "done"
	JobFailed   JobState = "failed"
	JobCanceled JobState = "canceled"
)

// JobStatus is the public view of an export job.
type JobStatus struct {
	ID       string        `json:"id"`
	State    JobState      `json:"state"`
	Progress deck.Progress `json:"progress"`
	Error    string        `json:"error,omitempty"`
	Pages    int           `json:"pages,omitempty"`
	Filename string        `json:"filename,omitempty"`
}

// Job is one export running in the background. Watchers block on the
// channel returned by Watch, which is closed on every change.
type Job struct {
	id      string
	created time.Time
	cancel  context.CancelFunc

	mu       sync.Mutex
	state    JobState
	progress deck.Progress
	doc      *deck.Document
	errMsg   string
	finished time.Time
	changed  chan struct{}
}

func (j *Job) ID() string { return j.id }

func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.statusLocked()
}

func (j *Job) statusLocked() JobStatus {
	st := JobStatus{ID: j.id, State: j.state, Progress: j.progress, Error: j.errMsg}
	if j.doc != nil {
		st.Pages = j.doc.PageCount()
		st.Filename = j.doc.Filename
	}
	return st
}

// Watch returns the current status and a channel closed on the next change.
func (j *Job) Watch() (JobStatus, <-chan struct{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.statusLocked(), j.changed
}

// Document returns the finished document, or nil while running or failed.
func (j *Job) Document() *deck.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc
}

func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) update(fn func(j *Job)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != JobRunning {
		return
	}
	fn(j)
	if j.state != JobRunning {
		j.finished = time.Now()
	}
	close(j.changed)
	j.changed = make(chan struct{})
}

func (j *Job) report(p deck.Progress) {
	j.update(func(j *Job) { j.progress = p })
}

func (j *Job) succeed(doc *deck.Document) {
	j.update(func(j *Job) {
		j.state = JobDone
		j.doc = doc
	})
}

func (j *Job) fail(state JobState, msg string) {
	j.update(func(j *Job) {
		j.state = state
		j.errMsg = msg
	})
}

// Jobs is the registry of export jobs. Finished jobs are dropped ttl after
// they end.
type Jobs struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobs(ttl time.Duration) *Jobs {
	return &Jobs{jobs: map[string]*Job{}, ttl: ttl}
}

// Start registers a job and runs fn in a goroutine with a context the job
// can cancel.
func (js *Jobs) Start(fn func(ctx context.Context, j *Job)) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{
		id:      uuid.NewString(),
		created: time.Now(),
		cancel:  cancel,
		state:   JobRunning,
		changed: make(chan struct{}),
	}
	js.mu.Lock()
	js.sweepLocked()
	js.jobs[j.id] = j
	js.mu.Unlock()

	go func() {
		defer cancel()
		defer func() {
			if rec := recover(); rec != nil {
				logrus.WithField("job", j.id).Errorf("export job panicked: %v", rec)
				j.fail(JobFailed, "export failed")
			}
		}()
		fn(ctx, j)
	}()
	return j
}

func (js *Jobs) Get(id string) (*Job, bool) {
	js.mu.Lock()
	defer js.mu.Unlock()
	j, ok := js.jobs[id]
	return j, ok
}

func (js *Jobs) sweepLocked() {
	if js.ttl <= 0 {
		return
	}
	now := time.Now()
	for id, j := range js.jobs {
		j.mu.Lock()
		expired := j.state != JobRunning && now.Sub(j.finished) > js.ttl
		j.mu.Unlock()
		if expired {
			delete(js.jobs, id)
		}
	}
}
