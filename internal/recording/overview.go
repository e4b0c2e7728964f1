package recording

import (
	"encoding/binary"
	"fmt"
)

// OverviewChannel reads a strided thumbnail of one channel across the whole
// recording, at most maxPoints samples. The stride walks complete frames so
// memory stays bounded by maxPoints regardless of recording length. Short
// recordings return every sample.
func (r *Recording) OverviewChannel(ch, maxPoints int) ([]float32, error) {
	if ch < 0 || ch >= r.numChannels {
		return nil, fmt.Errorf("%w: channel %d not in [0, %d)", ErrRange, ch, r.numChannels)
	}
	if maxPoints <= 0 {
		return nil, fmt.Errorf("%w: maxPoints %d", ErrRange, maxPoints)
	}
	if r.numSamples == 0 {
		return nil, fmt.Errorf("%w: empty recording", ErrRange)
	}

	stride := r.numSamples / int64(maxPoints)
	if stride < 1 {
		stride = 1
	}
	n := int(r.numSamples / stride)
	if n > maxPoints {
		n = maxPoints
	}

	frame := int64(r.numChannels * BytesPerSample)
	out := make([]float32, n)
	raw := make([]byte, BytesPerSample)
	for i := 0; i < n; i++ {
		off := int64(i)*stride*frame + int64(ch*BytesPerSample)
		if _, err := r.file.ReadAt(raw, off); err != nil {
			return nil, fmt.Errorf("read overview sample %d: %w", int64(i)*stride, err)
		}
		out[i] = float32(int16(binary.LittleEndian.Uint16(raw)))
	}
	return out, nil
}
