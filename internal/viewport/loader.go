package viewport

import (
	"fmt"
	"log"
	"sync"
	"time"

	"eeg-scope/internal/dsp"
	"eeg-scope/internal/recording"
)

// DebounceInterval is how long the loader waits after the last
// user-initiated range change before issuing a fetch. Pan and zoom
// gestures produce bursts of range changes; only the final position is
// worth loading.
const DebounceInterval = 250 * time.Millisecond

// Update is delivered to the renderer after a successful fetch. The
// buffer spans Loaded; the renderer must show only Visible and must not
// auto-fit to the whole buffer, or the apparent pan position jumps.
type Update struct {
	Buffer  *recording.Buffer
	Loaded  SampleRange
	Visible SampleRange
}

// Loader owns the currently loaded sample window for one recording and
// one channel selection, and decides per range change whether to refetch.
// All mutating calls are expected from a single goroutine; the debounce
// timer callback is internally serialized with them.
type Loader struct {
	mu sync.Mutex

	rec          *recording.Recording
	selection    []int
	samplingRate float64

	loaded  SampleRange
	visible SampleRange
	raw     *recording.Buffer // as read from the recording
	current *recording.Buffer // raw with processing and filters applied

	procOpts dsp.Options
	chain    dsp.Chain

	debounce *time.Timer
	pending  SampleRange

	autoLoad bool

	onUpdate func(Update)
	onStatus func(string)
}

// NewLoader creates a loader over rec with an initial channel selection.
func NewLoader(rec *recording.Recording, selection []int) *Loader {
	return &Loader{
		rec:          rec,
		selection:    append([]int(nil), selection...),
		samplingRate: rec.SamplingRate(),
		autoLoad:     true,
	}
}

// OnUpdate registers the renderer callback. It may be invoked from the
// debounce timer goroutine.
func (l *Loader) OnUpdate(fn func(Update)) { l.onUpdate = fn }

// OnStatus registers a status message callback for non-fatal failures.
func (l *Loader) OnStatus(fn func(string)) { l.onStatus = fn }

// SetAutoLoad enables or disables fetches driven by range changes.
func (l *Loader) SetAutoLoad(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.autoLoad = enabled
	if !enabled && l.debounce != nil {
		l.debounce.Stop()
	}
}

// Selection returns the active channel selection in display order.
func (l *Loader) Selection() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.selection...)
}

// SamplingRate returns the recording's sampling rate in Hz.
func (l *Loader) SamplingRate() float64 { return l.samplingRate }

// NumSamples returns the total samples per channel in the recording.
func (l *Loader) NumSamples() int64 { return l.rec.NumSamples() }

// Loaded returns the currently resident sample range.
func (l *Loader) Loaded() SampleRange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Visible returns the sample range most recently handed to the renderer.
func (l *Loader) Visible() SampleRange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// Current returns the processed buffer and the range it spans.
func (l *Loader) Current() (*recording.Buffer, SampleRange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.loaded
}

// SetSelection replaces the channel selection and invalidates the loaded
// window; the next range change refetches.
func (l *Loader) SetSelection(selection []int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection = append([]int(nil), selection...)
	l.loaded = SampleRange{}
	l.raw = nil
	l.current = nil
}

// SetProcessing replaces the processing options and reapplies the whole
// pipeline to the resident raw data.
func (l *Loader) SetProcessing(opts dsp.Options) error {
	l.mu.Lock()
	l.procOpts = opts
	err := l.reprocessLocked()
	update, ok := l.updateLocked()
	l.mu.Unlock()
	l.notify(update, ok)
	return err
}

// Processing returns the active processing options.
func (l *Loader) Processing() dsp.Options {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procOpts
}

// AppendFilter validates nothing further (filters are validated at
// construction) and applies f cumulatively to the current buffer.
func (l *Loader) AppendFilter(f dsp.Filter) error {
	l.mu.Lock()
	if l.current != nil {
		if err := dsp.Apply(l.current, f, l.samplingRate); err != nil {
			l.mu.Unlock()
			return err
		}
	}
	l.chain = append(l.chain, f)
	update, ok := l.updateLocked()
	l.mu.Unlock()
	l.notify(update, ok)
	return nil
}

// SetFilterResult installs a buffer produced by a background filter task
// together with the filter that produced it. The buffer must span the
// loaded range for the active selection.
func (l *Loader) SetFilterResult(buf *recording.Buffer, f dsp.Filter) {
	l.mu.Lock()
	l.current = buf
	l.chain = append(l.chain, f)
	update, ok := l.updateLocked()
	l.mu.Unlock()
	l.notify(update, ok)
}

// Chain returns the applied filter chain.
func (l *Loader) Chain() dsp.Chain {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append(dsp.Chain(nil), l.chain...)
}

// ClearFilters drops the filter chain and rebuilds the current buffer
// from resident raw data.
func (l *Loader) ClearFilters() error {
	l.mu.Lock()
	l.chain = nil
	err := l.reprocessLocked()
	update, ok := l.updateLocked()
	l.mu.Unlock()
	l.notify(update, ok)
	return err
}

// reprocessLocked rebuilds current from raw: processing first, then the
// filter chain replayed in order.
func (l *Loader) reprocessLocked() error {
	if l.raw == nil {
		return nil
	}
	buf := l.raw.Clone()
	dsp.Process(buf, l.procOpts)
	if err := l.chain.Apply(buf, l.samplingRate); err != nil {
		return err
	}
	l.current = buf
	return nil
}

// SetVisibleSeconds reports a range change in seconds. Programmatic
// echoes of the loader's own view updates are ignored; user events re-arm
// the debounce timer so only the final position of a gesture is fetched.
func (l *Loader) SetVisibleSeconds(startSec, endSec float64, src Source) {
	if src == ProgrammaticUpdate {
		return
	}
	visible := SampleRange{
		Start: int64(startSec * l.samplingRate),
		End:   int64(endSec * l.samplingRate),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.autoLoad {
		return
	}
	l.pending = visible
	if l.debounce == nil {
		l.debounce = time.AfterFunc(DebounceInterval, l.debounceFired)
		return
	}
	l.debounce.Stop()
	l.debounce.Reset(DebounceInterval)
}

// debounceFired runs on the timer goroutine once a gesture has quieted.
func (l *Loader) debounceFired() {
	l.mu.Lock()
	visible := l.pending
	l.mu.Unlock()
	if err := l.LoadVisible(visible); err != nil {
		l.status(fmt.Sprintf("auto-load failed: %v", err))
	}
}

// LoadVisible synchronously evaluates the fetch decision for a visible
// sample range and reloads if required. A fetch failure leaves the
// previous window fully intact.
func (l *Loader) LoadVisible(visible SampleRange) error {
	l.mu.Lock()

	d := Decide(visible, l.loaded, l.rec.NumSamples(), l.samplingRate)
	if d.Visible.Empty() {
		l.mu.Unlock()
		return nil
	}
	if !d.Reload {
		l.visible = d.Visible
		update, ok := l.updateLocked()
		l.mu.Unlock()
		l.notify(update, ok)
		return nil
	}

	log.Printf("viewport: loading %v for visible %v (%v)", d.Fetch, d.Visible, d.Reason)
	raw, err := l.rec.LoadChannels(l.selection, d.Fetch.Start, d.Fetch.End)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("load %v: %w", d.Fetch, err)
	}

	buf := raw.Clone()
	dsp.Process(buf, l.procOpts)
	if err := l.chain.Apply(buf, l.samplingRate); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("replay filters: %w", err)
	}

	// Wholesale replacement only after everything succeeded.
	l.raw = raw
	l.current = buf
	l.loaded = d.Fetch
	l.visible = d.Visible
	update, ok := l.updateLocked()
	l.mu.Unlock()
	l.notify(update, ok)
	return nil
}

// updateLocked snapshots the renderer payload under the lock.
func (l *Loader) updateLocked() (Update, bool) {
	if l.current == nil {
		return Update{}, false
	}
	return Update{
		Buffer:  l.current,
		Loaded:  l.loaded,
		Visible: l.visible,
	}, true
}

// notify invokes the renderer callback outside the lock, so the callback
// is free to query the loader.
func (l *Loader) notify(update Update, ok bool) {
	if ok && l.onUpdate != nil {
		l.onUpdate(update)
	}
}

// status forwards a non-fatal failure message.
func (l *Loader) status(msg string) {
	log.Print(msg)
	if l.onStatus != nil {
		l.onStatus(msg)
	}
}
