package panels

import (
	"context"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/app"
	"eeg-scope/internal/dsp"
)

// FiltersPanel builds and applies the cumulative filter chain. Filtering
// runs on a background worker; applying a new filter while one is still
// running cancels the older job.
type FiltersPanel struct {
	state  *app.State
	window fyne.Window
	runner *dsp.Runner

	typeSelect *widget.Select
	lowEntry   *widget.Entry
	highEntry  *widget.Entry
	orderEntry *widget.Entry
	qEntry     *widget.Entry
	chainLabel *widget.Label
	box        *fyne.Container
}

// NewFiltersPanel creates the filter chain panel.
func NewFiltersPanel(state *app.State) *FiltersPanel {
	fp := &FiltersPanel{
		state:  state,
		runner: dsp.NewRunner(),
	}

	fp.typeSelect = widget.NewSelect([]string{"bandpass", "highpass", "lowpass", "notch"}, func(string) {})
	fp.typeSelect.SetSelected("bandpass")
	fp.lowEntry = newNumEntry("1.0")
	fp.highEntry = newNumEntry("50.0")
	fp.orderEntry = newNumEntry("4")
	fp.qEntry = newNumEntry("30")

	applyBtn := widget.NewButton("Apply Filter", fp.apply)
	clearBtn := widget.NewButton("Clear Chain", fp.clear)

	fp.chainLabel = widget.NewLabel("Chain: none")
	fp.chainLabel.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Type", fp.typeSelect),
		widget.NewFormItem("Low / Cutoff (Hz)", fp.lowEntry),
		widget.NewFormItem("High (Hz)", fp.highEntry),
		widget.NewFormItem("Order", fp.orderEntry),
		widget.NewFormItem("Notch Q", fp.qEntry),
	)

	fp.box = container.NewVBox(
		form,
		container.NewHBox(applyBtn, clearBtn),
		widget.NewSeparator(),
		fp.chainLabel,
	)

	state.On(app.EventFiltersChanged, func(interface{}) { fp.refreshChain() })
	state.On(app.EventSessionLoaded, func(interface{}) { fp.refreshChain() })

	return fp
}

// Container returns the panel container.
func (fp *FiltersPanel) Container() fyne.CanvasObject {
	return fp.box
}

// SetWindow sets the parent window for error dialogs.
func (fp *FiltersPanel) SetWindow(w fyne.Window) {
	fp.window = w
}

func newNumEntry(initial string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(initial)
	return e
}

func (fp *FiltersPanel) build() (dsp.Filter, error) {
	low, _ := strconv.ParseFloat(fp.lowEntry.Text, 64)
	high, _ := strconv.ParseFloat(fp.highEntry.Text, 64)
	order, _ := strconv.Atoi(fp.orderEntry.Text)
	q, _ := strconv.ParseFloat(fp.qEntry.Text, 64)

	switch fp.typeSelect.Selected {
	case "bandpass":
		return dsp.NewBandpass(low, high, order)
	case "highpass":
		return dsp.NewHighpass(low, order)
	case "lowpass":
		return dsp.NewLowpass(low, order)
	case "notch":
		return dsp.NewNotch(low, q)
	default:
		return nil, fmt.Errorf("no filter type selected")
	}
}

// apply submits the filter to the background runner and installs the
// result when it completes.
func (fp *FiltersPanel) apply() {
	loader := fp.state.Loader
	if loader == nil {
		return
	}
	buf, _ := loader.Current()
	if buf == nil {
		fp.showError(fmt.Errorf("no data loaded"))
		return
	}

	f, err := fp.build()
	if err != nil {
		fp.showError(err)
		return
	}

	fp.state.Emit(app.EventStatus, fmt.Sprintf("Applying %s...", f.Label()))
	task := fp.runner.Submit(buf, f, loader.SamplingRate())

	go func() {
		result, err := task.Wait()
		if err != nil {
			if err != context.Canceled {
				fp.state.Emit(app.EventStatus, fmt.Sprintf("Filter failed: %v", err))
			}
			return
		}
		// A superseded task may still finish; only the latest one may
		// publish, or rapid submissions could land out of order.
		if !fp.runner.Install(task, func() { loader.SetFilterResult(result, f) }) {
			return
		}
		fp.state.SetModified(true)
		fp.state.Emit(app.EventFiltersChanged, loader.Chain())
		fp.state.Emit(app.EventStatus, fmt.Sprintf("Applied %s", f.Label()))
	}()
}

func (fp *FiltersPanel) clear() {
	if err := fp.state.ClearFilters(); err != nil {
		fp.showError(err)
	}
}

func (fp *FiltersPanel) refreshChain() {
	if fp.state.Loader == nil {
		fp.chainLabel.SetText("Chain: none")
		return
	}
	fp.chainLabel.SetText("Chain: " + fp.state.Loader.Chain().Describe())
}

func (fp *FiltersPanel) showError(err error) {
	if fp.window != nil {
		dialog.ShowError(err, fp.window)
		return
	}
	fp.state.Emit(app.EventStatus, err.Error())
}
