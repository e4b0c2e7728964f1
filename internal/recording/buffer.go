package recording

// Buffer is a dense multi-channel sample block, row-major by sample. It is
// the unit of exchange between the loader, the processing pipeline, and the
// renderer: samples for one time point are contiguous, one float32 per
// selected channel.
type Buffer struct {
	Data     []float32
	Channels int
}

// NewBuffer allocates a zeroed buffer for rows samples of channels columns.
func NewBuffer(rows, channels int) *Buffer {
	return &Buffer{
		Data:     make([]float32, rows*channels),
		Channels: channels,
	}
}

// Rows returns the number of samples per channel in the buffer.
func (b *Buffer) Rows() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Row returns the slice holding all channel values for one sample.
func (b *Buffer) Row(i int) []float32 {
	return b.Data[i*b.Channels : (i+1)*b.Channels]
}

// At returns the value for one sample of one channel column.
func (b *Buffer) At(sample, ch int) float32 {
	return b.Data[sample*b.Channels+ch]
}

// Set stores the value for one sample of one channel column.
func (b *Buffer) Set(sample, ch int, v float32) {
	b.Data[sample*b.Channels+ch] = v
}

// Column copies one channel column into dst and returns it. dst is grown
// as needed; pass nil to allocate.
func (b *Buffer) Column(ch int, dst []float64) []float64 {
	rows := b.Rows()
	if cap(dst) < rows {
		dst = make([]float64, rows)
	}
	dst = dst[:rows]
	for i := 0; i < rows; i++ {
		dst[i] = float64(b.Data[i*b.Channels+ch])
	}
	return dst
}

// SetColumn stores src back into one channel column.
func (b *Buffer) SetColumn(ch int, src []float64) {
	for i, v := range src {
		b.Data[i*b.Channels+ch] = float32(v)
	}
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Data:     make([]float32, len(b.Data)),
		Channels: b.Channels,
	}
	copy(out.Data, b.Data)
	return out
}

// Slice returns a copy of rows [start, end) as a new buffer.
func (b *Buffer) Slice(start, end int) *Buffer {
	out := NewBuffer(end-start, b.Channels)
	copy(out.Data, b.Data[start*b.Channels:end*b.Channels])
	return out
}

// Decimate returns a copy containing every stride-th row, starting at row 0.
// A stride of 1 is equivalent to Clone.
func (b *Buffer) Decimate(stride int) *Buffer {
	if stride <= 1 {
		return b.Clone()
	}
	rows := b.Rows()
	kept := (rows + stride - 1) / stride
	out := NewBuffer(kept, b.Channels)
	for i := 0; i < kept; i++ {
		copy(out.Row(i), b.Row(i*stride))
	}
	return out
}
