package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/app"
	"eeg-scope/internal/dsp"
)

// ProcessingPanel toggles the fixed processing pipeline: DC removal,
// normalization, re-referencing.
type ProcessingPanel struct {
	state *app.State

	dcCheck    *widget.Check
	normCheck  *widget.Check
	rerefRadio *widget.RadioGroup
	box        *fyne.Container
}

// NewProcessingPanel creates the processing options panel.
func NewProcessingPanel(state *app.State) *ProcessingPanel {
	pp := &ProcessingPanel{state: state}

	pp.dcCheck = widget.NewCheck("Remove DC offset", func(bool) { pp.apply() })
	pp.dcCheck.SetChecked(true)
	pp.normCheck = widget.NewCheck("Normalize (z-score)", func(bool) { pp.apply() })
	pp.rerefRadio = widget.NewRadioGroup([]string{"none", "average"}, func(string) { pp.apply() })
	pp.rerefRadio.SetSelected("none")

	pp.box = container.NewVBox(
		pp.dcCheck,
		pp.normCheck,
		widget.NewSeparator(),
		widget.NewLabel("Re-reference"),
		pp.rerefRadio,
	)

	state.On(app.EventSessionLoaded, func(interface{}) { pp.sync() })

	return pp
}

// Container returns the panel container.
func (pp *ProcessingPanel) Container() fyne.CanvasObject {
	return pp.box
}

// sync pulls the loader's options into the controls after a session
// restore, without re-triggering apply.
func (pp *ProcessingPanel) sync() {
	if pp.state.Loader == nil {
		return
	}
	opts := pp.state.Loader.Processing()
	pp.dcCheck.Checked = opts.RemoveDC
	pp.normCheck.Checked = opts.Normalize
	pp.rerefRadio.Selected = opts.Reref.String()
	pp.box.Refresh()
}

func (pp *ProcessingPanel) apply() {
	pp.state.SetProcessing(dsp.Options{
		RemoveDC:  pp.dcCheck.Checked,
		Normalize: pp.normCheck.Checked,
		Reref:     dsp.RerefModeFromString(pp.rerefRadio.Selected),
	})
}
