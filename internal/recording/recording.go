// Package recording provides random-access, channel-selective reads over
// large interleaved binary electrophysiology recordings (.dat files).
//
// The file layout follows the Buzsaki lab convention: little-endian int16
// samples, channel-minor interleaved (all channels for sample 0, then all
// channels for sample 1, and so on). There is no header; the channel count
// is supplied by the caller or inferred from sidecar metadata and file size.
package recording

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
)

const (
	// BytesPerSample is fixed by the format: signed 16-bit samples.
	BytesPerSample = 2

	// DefaultChunkSamples bounds peak memory when reading a narrow channel
	// selection out of a wide file.
	DefaultChunkSamples = 4096
)

var (
	// ErrNotFound indicates the recording path does not exist.
	ErrNotFound = errors.New("recording not found")

	// ErrRange indicates an empty, inverted, or out-of-bounds sample or
	// channel range.
	ErrRange = errors.New("invalid range")
)

// commonChannelCounts holds layouts seen in practice, tried in order when
// the channel count has to be inferred from file size alone.
var commonChannelCounts = []int{16, 32, 64, 72, 128, 256}

// Recording is a read-only handle to an interleaved binary recording.
type Recording struct {
	path        string
	file        *os.File
	fileSize    int64
	numChannels int
	numSamples  int64 // samples per channel, whole frames only
	meta        *Metadata

	rateOverride float64
}

// Open opens a recording at path. If numChannels is zero the channel count
// is inferred from sidecar metadata or by testing common layouts for exact
// divisibility. An explicit count that does not evenly divide the file size
// succeeds with a logged warning; trailing bytes are ignored.
func Open(path string, numChannels int) (*Recording, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat recording: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}

	r := &Recording{
		path:     path,
		file:     f,
		fileSize: info.Size(),
		meta:     loadMetadata(path),
	}

	if numChannels > 0 {
		r.numChannels = numChannels
		if rem := r.fileSize % int64(BytesPerSample*numChannels); rem != 0 {
			log.Printf("recording: file size %d is not a multiple of %d channels x %d bytes; ignoring last %d bytes",
				r.fileSize, numChannels, BytesPerSample, rem)
		}
	} else {
		r.numChannels, err = r.inferChannelCount()
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	r.numSamples = r.fileSize / int64(BytesPerSample*r.numChannels)
	r.meta.checkLength(r.numSamples)
	return r, nil
}

// inferChannelCount derives the channel count from the sample-number sidecar
// when present, falling back to testing common layouts for divisibility.
// Inference is best-effort: multiple layouts can divide evenly, and the
// first match wins.
func (r *Recording) inferChannelCount() (int, error) {
	totalSamples := r.fileSize / BytesPerSample

	if n := len(r.meta.SampleNumbers); n > 0 {
		ch := int(totalSamples / int64(n))
		if ch > 0 {
			log.Printf("recording: inferred %d channels from sample-number sidecar", ch)
			return ch, nil
		}
	}

	for _, ch := range commonChannelCounts {
		if r.fileSize%int64(BytesPerSample*ch) == 0 {
			log.Printf("recording: inferred %d channels (file divides evenly)", ch)
			return ch, nil
		}
	}

	return 0, fmt.Errorf("cannot infer channel count for %s (%d bytes); specify it explicitly", r.path, r.fileSize)
}

// Close releases the underlying file handle.
func (r *Recording) Close() error {
	return r.file.Close()
}

// Path returns the recording file path.
func (r *Recording) Path() string { return r.path }

// NumChannels returns the number of interleaved channels.
func (r *Recording) NumChannels() int { return r.numChannels }

// NumSamples returns the number of samples per channel.
func (r *Recording) NumSamples() int64 { return r.numSamples }

// FileSize returns the size of the recording file in bytes.
func (r *Recording) FileSize() int64 { return r.fileSize }

// Metadata returns the sidecar metadata loaded alongside the recording.
func (r *Recording) Metadata() *Metadata { return r.meta }

// SamplingRate returns the sampling rate derived from the timestamp sidecar,
// or DefaultSamplingRate when no timestamps are available. An explicit
// override set with SetSamplingRate takes precedence over both.
func (r *Recording) SamplingRate() float64 {
	if r.rateOverride > 0 {
		return r.rateOverride
	}
	return r.meta.SamplingRate()
}

// SetSamplingRate overrides the sampling rate for recordings without a
// usable timestamp sidecar. Non-positive rates are ignored.
func (r *Recording) SetSamplingRate(rate float64) {
	if rate > 0 {
		r.rateOverride = rate
	}
}

// clampSpan clamps [start, end) into the valid sample range and reports
// whether a non-empty span remains.
func (r *Recording) clampSpan(start, end int64) (int64, int64, error) {
	if start < 0 {
		start = 0
	}
	if end > r.numSamples {
		end = r.numSamples
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%w: samples [%d, %d)", ErrRange, start, end)
	}
	return start, end, nil
}

// LoadAllChannels reads samples [start, end) for every channel and returns
// a dense (end-start) x NumChannels buffer. Bounds are clamped into the
// valid sample range; an empty or inverted span returns ErrRange.
func (r *Recording) LoadAllChannels(start, end int64) (*Buffer, error) {
	start, end, err := r.clampSpan(start, end)
	if err != nil {
		return nil, err
	}

	n := int(end - start)
	frame := r.numChannels * BytesPerSample
	raw := make([]byte, n*frame)
	if _, err := r.file.ReadAt(raw, start*int64(frame)); err != nil {
		return nil, fmt.Errorf("read samples [%d, %d): %w", start, end, err)
	}

	buf := NewBuffer(n, r.numChannels)
	for i := 0; i < n*r.numChannels; i++ {
		buf.Data[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}
	return buf, nil
}

// LoadChannels reads samples [start, end) for the selected channels only,
// in selection order, and returns a dense (end-start) x len(channels)
// buffer. The file is consumed in bounded chunks so peak memory stays at
// chunkSamples x NumChannels x 2 bytes regardless of the span length.
// Any channel index outside [0, NumChannels) returns ErrRange.
func (r *Recording) LoadChannels(channels []int, start, end int64) (*Buffer, error) {
	return r.LoadChannelsChunked(channels, start, end, DefaultChunkSamples)
}

// LoadChannelsChunked is LoadChannels with an explicit chunk size in samples.
func (r *Recording) LoadChannelsChunked(channels []int, start, end int64, chunkSamples int) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels selected", ErrRange)
	}
	for _, ch := range channels {
		if ch < 0 || ch >= r.numChannels {
			return nil, fmt.Errorf("%w: channel %d not in [0, %d)", ErrRange, ch, r.numChannels)
		}
	}
	start, end, err := r.clampSpan(start, end)
	if err != nil {
		return nil, err
	}
	if chunkSamples <= 0 {
		chunkSamples = DefaultChunkSamples
	}

	n := int(end - start)
	frame := r.numChannels * BytesPerSample
	buf := NewBuffer(n, len(channels))
	raw := make([]byte, chunkSamples*frame)

	for done := 0; done < n; {
		take := chunkSamples
		if n-done < take {
			take = n - done
		}
		chunk := raw[:take*frame]
		off := (start + int64(done)) * int64(frame)
		if _, err := r.file.ReadAt(chunk, off); err != nil {
			return nil, fmt.Errorf("read samples [%d, %d): %w", start+int64(done), start+int64(done+take), err)
		}

		for s := 0; s < take; s++ {
			row := buf.Row(done + s)
			base := s * frame
			for j, ch := range channels {
				row[j] = float32(int16(binary.LittleEndian.Uint16(raw[base+ch*2:])))
			}
		}
		done += take
	}
	return buf, nil
}
