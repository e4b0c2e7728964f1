// Package panels provides the side panel sections of the main window.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"eeg-scope/internal/app"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	channelsPanel   *ChannelsPanel
	processingPanel *ProcessingPanel
	filtersPanel    *FiltersPanel
	spectrumPanel   *SpectrumPanel
	eventsPanel     *EventsPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.channelsPanel = NewChannelsPanel(state)
	sp.processingPanel = NewProcessingPanel(state)
	sp.filtersPanel = NewFiltersPanel(state)
	sp.spectrumPanel = NewSpectrumPanel(state)
	sp.eventsPanel = NewEventsPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Channels", sp.channelsPanel.Container()),
		container.NewTabItem("Processing", sp.processingPanel.Container()),
		container.NewTabItem("Filters", sp.filtersPanel.Container()),
		container.NewTabItem("Spectrum", sp.spectrumPanel.Container()),
		container.NewTabItem("Events", sp.eventsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.filtersPanel.SetWindow(w)
	sp.eventsPanel.SetWindow(w)
}
