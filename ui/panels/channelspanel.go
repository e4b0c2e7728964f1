package panels

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/app"
	"eeg-scope/internal/recording"
)

// ChannelsPanel selects which channels are displayed and their gains.
type ChannelsPanel struct {
	state *app.State

	checks    []*widget.Check
	checkBox  *fyne.Container
	gainEntry *widget.Entry
	gainLabel *widget.Label
	box       *fyne.Container
}

// NewChannelsPanel creates the channel selection panel.
func NewChannelsPanel(state *app.State) *ChannelsPanel {
	cp := &ChannelsPanel{state: state}

	cp.checkBox = container.NewVBox()

	selectAll := widget.NewButton("All", func() { cp.setAll(true) })
	selectNone := widget.NewButton("None", func() { cp.setAll(false) })
	apply := widget.NewButton("Apply Selection", cp.applySelection)

	cp.gainLabel = widget.NewLabel("Base gain")
	cp.gainEntry = widget.NewEntry()
	cp.gainEntry.SetText("1.0")
	cp.gainEntry.OnSubmitted = func(text string) {
		if g, err := strconv.ParseFloat(text, 64); err == nil && g > 0 {
			state.SetBaseGain(g)
		}
	}

	cp.box = container.NewBorder(
		container.NewVBox(
			container.NewHBox(selectAll, selectNone),
			apply,
			container.NewBorder(nil, nil, cp.gainLabel, nil, cp.gainEntry),
			widget.NewSeparator(),
		),
		nil, nil, nil,
		container.NewVScroll(cp.checkBox),
	)

	state.On(app.EventRecordingOpened, func(data interface{}) {
		rec, ok := data.(*recording.Recording)
		if !ok {
			return
		}
		cp.rebuild(rec.NumChannels())
	})
	state.On(app.EventRecordingClosed, func(interface{}) {
		cp.rebuild(0)
	})

	return cp
}

// Container returns the panel container.
func (cp *ChannelsPanel) Container() fyne.CanvasObject {
	return cp.box
}

// rebuild recreates one checkbox per channel.
func (cp *ChannelsPanel) rebuild(numChannels int) {
	cp.checks = make([]*widget.Check, numChannels)
	cp.checkBox.Objects = nil

	selected := map[int]bool{}
	if cp.state.Loader != nil {
		for _, ch := range cp.state.Loader.Selection() {
			selected[ch] = true
		}
	}

	for ch := 0; ch < numChannels; ch++ {
		check := widget.NewCheck(fmt.Sprintf("Channel %d", ch), nil)
		check.SetChecked(selected[ch])
		cp.checks[ch] = check
		cp.checkBox.Add(check)
	}
	cp.checkBox.Refresh()
}

func (cp *ChannelsPanel) setAll(checked bool) {
	for _, check := range cp.checks {
		check.SetChecked(checked)
	}
}

// applySelection pushes the checked channels into the loader.
func (cp *ChannelsPanel) applySelection() {
	var selection []int
	for ch, check := range cp.checks {
		if check.Checked {
			selection = append(selection, ch)
		}
	}
	if len(selection) == 0 {
		return
	}
	cp.state.SetSelection(selection)
}
