// Package export writes processed sample buffers and session metadata
// to disk for downstream analysis.
package export

import (
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"eeg-scope/internal/dsp"
	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
)

// WriteRaw writes the buffer as little-endian float32, rows interleaved
// the same way as the source recording (sample-major, channel-minor).
func WriteRaw(path string, buf *recording.Buffer) error {
	out := make([]byte, len(buf.Data)*4)
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write raw export: %w", err)
	}
	return nil
}

// WriteCSV writes the buffer as one row per sample, one column per
// channel, six decimal places.
func WriteCSV(path string, buf *recording.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := make([]string, buf.Channels)
	for i := 0; i < buf.Rows(); i++ {
		row := buf.Row(i)
		for ch, v := range row {
			record[ch] = strconv.FormatFloat(float64(v), 'f', 6, 32)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv export: %w", err)
	}
	return f.Close()
}

// Metadata describes what an exported buffer contains.
type Metadata struct {
	SourceFile      string             `json:"source_file"`
	SessionID       string             `json:"session_id,omitempty"`
	Channels        []int              `json:"channels"`
	NumChannels     int                `json:"num_channels"`
	StartSample     int64              `json:"start_sample"`
	EndSample       int64              `json:"end_sample"`
	NumSamples      int64              `json:"num_samples"`
	SamplingRate    float64            `json:"sampling_rate"`
	DurationSeconds float64            `json:"duration_seconds"`
	Processing      ProcessingInfo     `json:"processing"`
	Filters         []dsp.FilterRecord `json:"filter_chain"`
	ExportedAt      string             `json:"export_timestamp"`
}

// ProcessingInfo mirrors dsp.Options in its JSON form.
type ProcessingInfo struct {
	DCRemoval     bool   `json:"dc_removal"`
	Normalization bool   `json:"normalization"`
	Rereferencing string `json:"rereferencing"`
}

// BuildMetadata assembles the metadata document for an export.
func BuildMetadata(sourceFile, sessionID string, channels []int, span viewport.SampleRange, rate float64, opts dsp.Options, chain dsp.Chain) Metadata {
	return Metadata{
		SourceFile:      sourceFile,
		SessionID:       sessionID,
		Channels:        append([]int(nil), channels...),
		NumChannels:     len(channels),
		StartSample:     span.Start,
		EndSample:       span.End,
		NumSamples:      span.Len(),
		SamplingRate:    rate,
		DurationSeconds: float64(span.Len()) / rate,
		Processing: ProcessingInfo{
			DCRemoval:     opts.RemoveDC,
			Normalization: opts.Normalize,
			Rereferencing: opts.Reref.String(),
		},
		Filters:    chain.Records(),
		ExportedAt: time.Now().Format(time.RFC3339),
	}
}

// WriteMetadata writes the metadata document as indented JSON, forcing
// a .json extension the way the data exporters force theirs.
func WriteMetadata(path string, meta Metadata) error {
	if filepath.Ext(path) != ".json" {
		path += ".json"
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
