package panels

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/app"
	"eeg-scope/internal/trigger"
	"eeg-scope/internal/viewport"
)

// jumpWindowSeconds is the window shown around an event when jumping.
const jumpWindowSeconds = 2.0

// EventsPanel detects threshold crossings on one displayed channel and
// jumps the view between them.
type EventsPanel struct {
	state  *app.State
	window fyne.Window

	channelSelect   *widget.Select
	thresholdEntry  *widget.Entry
	refractoryEntry *widget.Entry
	edgeRadio       *widget.RadioGroup
	countLabel      *widget.Label
	box             *fyne.Container

	events []trigger.Event
	cursor int64 // sample position of the last jump
}

// NewEventsPanel creates the event detection panel.
func NewEventsPanel(state *app.State) *EventsPanel {
	ep := &EventsPanel{state: state}

	ep.channelSelect = widget.NewSelect(nil, func(string) {})
	ep.thresholdEntry = newNumEntry("100")
	ep.refractoryEntry = newNumEntry("200")
	ep.edgeRadio = widget.NewRadioGroup([]string{"rising", "falling", "either"}, nil)
	ep.edgeRadio.SetSelected("rising")
	ep.countLabel = widget.NewLabel("No events")

	detect := widget.NewButton("Detect", ep.detect)
	prev := widget.NewButton("< Prev", func() { ep.jump(false) })
	next := widget.NewButton("Next >", func() { ep.jump(true) })

	ep.box = container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Channel", ep.channelSelect),
			widget.NewFormItem("Threshold", ep.thresholdEntry),
			widget.NewFormItem("Refractory (samples)", ep.refractoryEntry),
		),
		ep.edgeRadio,
		detect,
		widget.NewSeparator(),
		ep.countLabel,
		container.NewHBox(prev, next),
	)

	state.On(app.EventSelectionChanged, func(interface{}) { ep.syncChannels() })
	state.On(app.EventRecordingOpened, func(interface{}) { ep.syncChannels() })

	return ep
}

// Container returns the panel container.
func (ep *EventsPanel) Container() fyne.CanvasObject {
	return ep.box
}

// SetWindow sets the parent window for error dialogs.
func (ep *EventsPanel) SetWindow(w fyne.Window) {
	ep.window = w
}

func (ep *EventsPanel) syncChannels() {
	if ep.state.Loader == nil {
		ep.channelSelect.Options = nil
		return
	}
	selection := ep.state.Loader.Selection()
	opts := make([]string, len(selection))
	for i, ch := range selection {
		opts[i] = strconv.Itoa(ch)
	}
	ep.channelSelect.Options = opts
	if len(opts) > 0 {
		ep.channelSelect.SetSelected(opts[0])
	}
	ep.channelSelect.Refresh()
}

func (ep *EventsPanel) edge() trigger.Edge {
	switch ep.edgeRadio.Selected {
	case "falling":
		return trigger.Falling
	case "either":
		return trigger.Either
	default:
		return trigger.Rising
	}
}

// detect scans the currently loaded buffer.
func (ep *EventsPanel) detect() {
	loader := ep.state.Loader
	if loader == nil {
		return
	}
	buf, loaded := loader.Current()
	if buf == nil {
		ep.countLabel.SetText("No data loaded")
		return
	}

	threshold, _ := strconv.ParseFloat(ep.thresholdEntry.Text, 64)
	refractory, _ := strconv.ParseInt(ep.refractoryEntry.Text, 10, 64)

	events, err := trigger.Detect(buf, loaded.Start, trigger.Config{
		Channel:           ep.channelSelect.SelectedIndex(),
		Threshold:         threshold,
		Edge:              ep.edge(),
		RefractorySamples: refractory,
	})
	if err != nil {
		ep.showError(err)
		return
	}

	ep.events = events
	ep.cursor = loaded.Start
	ep.countLabel.SetText(fmt.Sprintf("%d events in loaded window", len(events)))

	samples := make([]int64, len(events))
	for i, ev := range events {
		samples[i] = ev.Sample
	}
	ep.state.Emit(app.EventTriggersDetected, samples)
}

// jump centers the view on the neighboring event.
func (ep *EventsPanel) jump(forward bool) {
	loader := ep.state.Loader
	if loader == nil || len(ep.events) == 0 {
		return
	}

	var ev *trigger.Event
	if forward {
		ev = trigger.Next(ep.events, ep.cursor)
	} else {
		ev = trigger.Prev(ep.events, ep.cursor)
	}
	if ev == nil {
		ep.state.Emit(app.EventStatus, "No more events")
		return
	}
	ep.cursor = ev.Sample

	half := int64(jumpWindowSeconds / 2 * loader.SamplingRate())
	visible := viewport.SampleRange{Start: ev.Sample - half, End: ev.Sample + half}
	if visible.Start < 0 {
		visible.End -= visible.Start
		visible.Start = 0
	}
	if err := loader.LoadVisible(visible); err != nil {
		ep.showError(err)
	}
}

func (ep *EventsPanel) showError(err error) {
	if ep.window != nil {
		dialog.ShowError(err, ep.window)
		return
	}
	ep.state.Emit(app.EventStatus, err.Error())
}
