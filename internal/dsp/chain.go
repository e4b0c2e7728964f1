package dsp

import (
	"fmt"
	"strings"

	"eeg-scope/internal/recording"
)

// Chain is an ordered list of applied filters. Filters are cumulative:
// undoing one means reloading raw data and replaying the rest.
type Chain []Filter

// Apply runs every filter in order over buf. The first failure aborts and
// is returned; earlier filters in the chain will already have been applied.
func (c Chain) Apply(buf *recording.Buffer, fs float64) error {
	for _, f := range c {
		if err := Apply(buf, f, fs); err != nil {
			return err
		}
	}
	return nil
}

// Describe returns a compact summary for status displays.
func (c Chain) Describe() string {
	if len(c) == 0 {
		return "none"
	}
	labels := make([]string, len(c))
	for i, f := range c {
		labels[i] = f.Label()
	}
	return strings.Join(labels, ", ")
}

// FilterRecord is the JSON form of one filter in a session file. Only the
// fields relevant to Type are populated.
type FilterRecord struct {
	Type   string  `json:"type"`
	Low    float64 `json:"low,omitempty"`
	High   float64 `json:"high,omitempty"`
	Cutoff float64 `json:"cutoff,omitempty"`
	Order  int     `json:"order,omitempty"`
	Freq   float64 `json:"freq,omitempty"`
	Q      float64 `json:"q,omitempty"`
}

// Records converts the chain to its session-file form.
func (c Chain) Records() []FilterRecord {
	recs := make([]FilterRecord, 0, len(c))
	for _, f := range c {
		switch v := f.(type) {
		case Bandpass:
			recs = append(recs, FilterRecord{Type: "bandpass", Low: v.Low, High: v.High, Order: v.Order})
		case Highpass:
			recs = append(recs, FilterRecord{Type: "highpass", Cutoff: v.Cutoff, Order: v.Order})
		case Lowpass:
			recs = append(recs, FilterRecord{Type: "lowpass", Cutoff: v.Cutoff, Order: v.Order})
		case Notch:
			recs = append(recs, FilterRecord{Type: "notch", Freq: v.Freq, Q: v.Q})
		}
	}
	return recs
}

// ChainFromRecords rebuilds a chain from its session-file form, validating
// every entry.
func ChainFromRecords(recs []FilterRecord) (Chain, error) {
	chain := make(Chain, 0, len(recs))
	for _, rec := range recs {
		var (
			f   Filter
			err error
		)
		switch rec.Type {
		case "bandpass":
			f, err = NewBandpass(rec.Low, rec.High, rec.Order)
		case "highpass":
			f, err = NewHighpass(rec.Cutoff, rec.Order)
		case "lowpass":
			f, err = NewLowpass(rec.Cutoff, rec.Order)
		case "notch":
			f, err = NewNotch(rec.Freq, rec.Q)
		default:
			err = fmt.Errorf("unknown filter type %q", rec.Type)
		}
		if err != nil {
			return nil, err
		}
		chain = append(chain, f)
	}
	return chain, nil
}
