// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// OpenRecordingDialog collects the parameters needed to open a raw
// recording whose channel count could not be inferred: the count itself
// and an optional sampling rate override.
type OpenRecordingDialog struct {
	window fyne.Window
	path   string

	channelEntry *widget.Entry
	rateEntry    *widget.Entry

	defaultChannels int

	onOpen func(numChannels int, samplingRate float64)
}

// NewOpenRecordingDialog creates the dialog for one recording path.
// A positive defaultChannels pre-fills the channel entry, typically the
// count used for the previous recording.
func NewOpenRecordingDialog(window fyne.Window, path string, defaultChannels int, onOpen func(numChannels int, samplingRate float64)) *OpenRecordingDialog {
	return &OpenRecordingDialog{
		window:          window,
		path:            path,
		defaultChannels: defaultChannels,
		onOpen:          onOpen,
	}
}

// Show displays the dialog.
func (d *OpenRecordingDialog) Show() {
	d.channelEntry = widget.NewEntry()
	d.channelEntry.SetPlaceHolder("e.g. 72")
	if d.defaultChannels > 0 {
		d.channelEntry.SetText(strconv.Itoa(d.defaultChannels))
	}
	d.rateEntry = widget.NewEntry()
	d.rateEntry.SetPlaceHolder("blank = from sidecar or 200")

	items := []*widget.FormItem{
		widget.NewFormItem("Channels", d.channelEntry),
		widget.NewFormItem("Sampling rate (Hz)", d.rateEntry),
	}

	dlg := dialog.NewForm(
		"Recording Layout",
		"Open", "Cancel",
		items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			d.submit()
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(360, 180))
	dlg.Show()
}

func (d *OpenRecordingDialog) submit() {
	numChannels, err := strconv.Atoi(d.channelEntry.Text)
	if err != nil || numChannels <= 0 {
		dialog.ShowError(fmt.Errorf("invalid channel count %q", d.channelEntry.Text), d.window)
		return
	}

	rate := 0.0
	if d.rateEntry.Text != "" {
		rate, err = strconv.ParseFloat(d.rateEntry.Text, 64)
		if err != nil || rate <= 0 {
			dialog.ShowError(fmt.Errorf("invalid sampling rate %q", d.rateEntry.Text), d.window)
			return
		}
	}

	if d.onOpen != nil {
		d.onOpen(numChannels, rate)
	}
}
