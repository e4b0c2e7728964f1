package dsp

import (
	"context"
	"sync"

	"eeg-scope/internal/recording"
)

// Task is a handle to one background filter job. The job owns a private
// copy of the input buffer; the caller's buffer is never touched.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	result *recording.Buffer
	err    error
}

// Done is closed when the job finishes, fails, or is canceled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel asks the job to stop. Cancellation is checked between channels,
// so a running column finishes before the job winds down.
func (t *Task) Cancel() { t.cancel() }

// Result returns the filtered buffer and error after Done is closed. A
// canceled job reports context.Canceled.
func (t *Task) Result() (*recording.Buffer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Wait blocks until the job finishes and returns its result.
func (t *Task) Wait() (*recording.Buffer, error) {
	<-t.done
	return t.Result()
}

// Runner serializes background filter jobs: submitting a new job cancels
// any job still in flight, so at most one result is ever pending and it
// always corresponds to the latest request.
type Runner struct {
	mu      sync.Mutex
	current *Task
}

// NewRunner creates an idle runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Submit starts filtering a copy of buf on a background goroutine and
// returns a handle. Any in-flight job is canceled first.
func (r *Runner) Submit(buf *recording.Buffer, f Filter, fs float64) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	r.mu.Lock()
	if r.current != nil {
		r.current.cancel()
	}
	r.current = t
	r.mu.Unlock()

	snapshot := buf.Clone()
	go t.run(ctx, snapshot, f, fs)
	return t
}

// Install runs fn only while t is still the latest submission. A
// superseded job can finish successfully if it slipped past its final
// cancellation check; gating the publish step here keeps such a result
// from landing after a newer one. Reports whether fn ran.
func (r *Runner) Install(t *Task, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != t {
		return false
	}
	fn()
	return true
}

// run executes the job, honoring cancellation between channel columns.
func (t *Task) run(ctx context.Context, buf *recording.Buffer, f Filter, fs float64) {
	defer close(t.done)

	secs, err := f.sections(fs)
	if err != nil {
		t.fail(err)
		return
	}

	col := make([]float64, 0, buf.Rows())
	for ch := 0; ch < buf.Channels; ch++ {
		select {
		case <-ctx.Done():
			t.fail(ctx.Err())
			return
		default:
		}
		col = buf.Column(ch, col)
		filtFilt(secs, col)
		buf.SetColumn(ch, col)
	}

	t.mu.Lock()
	t.result = buf
	t.mu.Unlock()
}

func (t *Task) fail(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}
