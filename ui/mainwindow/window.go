// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"eeg-scope/internal/app"
	"eeg-scope/internal/catalog"
	"eeg-scope/internal/export"
	"eeg-scope/internal/recording"
	"eeg-scope/internal/version"
	"eeg-scope/internal/viewport"
	"eeg-scope/ui/dialogs"
	"eeg-scope/ui/panels"
	"eeg-scope/ui/prefs"
	"eeg-scope/ui/traceview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	defaultWindowSeconds = 20.0
	defaultChannelsShown = 16
	overviewPoints       = 10_000
	sessionExtension     = ".eegsession"
	catalogFile          = "recordings.db"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	catalog   *catalog.Catalog
	traceView *traceview.TraceView
	overview  *traceview.Overview
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	// Menu items that need state tracking
	autoLoadItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("EEG Scope")
	win.Resize(fyne.NewSize(1280, 800))

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}
	mw.catalog = openCatalog()

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// openCatalog opens the recording catalog in the user config directory.
// A nil catalog is fine; lookups and updates are simply skipped.
func openCatalog() *catalog.Catalog {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	dir = filepath.Join(dir, "eeg-scope")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	c, err := catalog.Open(filepath.Join(dir, catalogFile))
	if err != nil {
		return nil
	}
	return c
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.traceView = traceview.New()
	mw.traceView.OnRangeChange(func(startSec, endSec float64, src viewport.Source) {
		if l := mw.state.Loader; l != nil {
			l.SetVisibleSeconds(startSec, endSec, src)
		}
	})

	mw.overview = traceview.NewOverview()
	mw.overview.OnSeek(mw.seekTo)

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	// Trace area with toolbar on top and the navigation strip below
	traceArea := container.NewBorder(
		toolbar,     // top
		mw.overview, // bottom
		nil,         // left
		nil,         // right
		mw.traceView.Container(), // center
	)

	// Main layout: side panel | trace area
	split := container.NewHSplit(
		mw.sidePanel.Container(),
		traceArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with pan and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	panLeftBtn := widget.NewButton("<", func() { mw.panByWindow(-0.5) })
	panRightBtn := widget.NewButton(">", func() { mw.panByWindow(0.5) })
	zoomOutBtn := widget.NewButton("-", func() { mw.traceView.ZoomOut() })
	zoomInBtn := widget.NewButton("+", func() { mw.traceView.ZoomIn() })
	fullBtn := widget.NewButton("Full", func() { mw.traceView.ZoomToFull() })

	return container.NewHBox(
		widget.NewLabel("Pan:"),
		panLeftBtn,
		panRightBtn,
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fullBtn,
	)
}

// seekTo recenters the visible window on the given time, keeping the
// current window length. Called when the overview strip is clicked.
func (mw *MainWindow) seekTo(centerSec float64) {
	loader := mw.state.Loader
	if loader == nil {
		return
	}
	rate := loader.SamplingRate()
	window := mw.traceView.Visible().Len()
	if window <= 0 {
		window = int64(defaultWindowSeconds * rate)
	}
	start := int64(centerSec*rate) - window/2
	if start < 0 {
		start = 0
	}
	if err := loader.LoadVisible(viewport.SampleRange{Start: start, End: start + window}); err != nil {
		mw.updateStatus("Load failed: " + err.Error())
	}
}

// syncLabels pushes the selected channel numbers to the trace view so
// labels name the real channels, not display slots.
func (mw *MainWindow) syncLabels() {
	loader := mw.state.Loader
	if loader == nil {
		mw.traceView.SetLabels(nil)
		return
	}
	selection := loader.Selection()
	labels := make([]string, len(selection))
	for i, ch := range selection {
		labels[i] = fmt.Sprintf("CH %d", ch)
	}
	mw.traceView.SetLabels(labels)
}

// loadOverview refreshes the navigation strip thumbnail from the first
// selected channel. The strided read runs off the UI goroutine.
func (mw *MainWindow) loadOverview() {
	rec := mw.state.Recording
	loader := mw.state.Loader
	if rec == nil || loader == nil {
		return
	}
	ch := 0
	if sel := loader.Selection(); len(sel) > 0 {
		ch = sel[0]
	}
	total := rec.NumSamples()
	rate := rec.SamplingRate()
	go func() {
		pts, err := rec.OverviewChannel(ch, overviewPoints)
		if err != nil {
			return
		}
		mw.overview.SetData(pts, total, rate)
	}()
}

// panByWindow shifts the view by the given fraction of the visible window.
func (mw *MainWindow) panByWindow(fraction float64) {
	v := mw.traceView.Visible()
	if v.Empty() {
		return
	}
	mw.traceView.PanSamples(int64(float64(v.Len()) * fraction))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	// File menu
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Recording...", mw.onOpenRecording),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Session...", mw.onOpenSession),
		fyne.NewMenuItem("Save Session", mw.onSaveSession),
		fyne.NewMenuItem("Save Session As...", mw.onSaveSessionAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Data...", mw.onExportData),
		fyne.NewMenuItem("Export Metadata...", mw.onExportMetadata),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Recording", mw.onCloseRecording),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	// View menu
	autoLoad := mw.prefs.Bool(prefs.KeyAutoLoadEnabled, true)
	mw.autoLoadItem = fyne.NewMenuItem(autoLoadLabel(autoLoad), mw.onToggleAutoLoad)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.traceView.ZoomIn() }),
		fyne.NewMenuItem("Zoom Out", func() { mw.traceView.ZoomOut() }),
		fyne.NewMenuItem("Zoom to Full", func() { mw.traceView.ZoomToFull() }),
		fyne.NewMenuItemSeparator(),
		mw.autoLoadItem,
	)

	// Help menu
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

func autoLoadLabel(enabled bool) string {
	if enabled {
		return "✓ Auto-Load on Pan"
	}
	return "  Auto-Load on Pan"
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventViewUpdated, func(data interface{}) {
		if u, ok := data.(viewport.Update); ok {
			mw.traceView.SetGains(mw.state.SelectionGains())
			mw.traceView.ShowUpdate(u)
			mw.overview.SetVisible(u.Visible)
		}
	})

	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})

	mw.state.On(app.EventRecordingOpened, func(data interface{}) {
		rec, ok := data.(*recording.Recording)
		if !ok {
			return
		}
		mw.SetTitle("EEG Scope - " + filepath.Base(rec.Path()))
		mw.traceView.SetRecordingInfo(rec.SamplingRate(), rec.NumSamples())
		mw.syncLabels()
		mw.loadOverview()
		mw.rememberRecording(rec)
		mw.updateStatus(fmt.Sprintf("Opened %s: %d channels, %.1f s at %.1f Hz",
			filepath.Base(rec.Path()), rec.NumChannels(),
			float64(rec.NumSamples())/rec.SamplingRate(), rec.SamplingRate()))
	})

	mw.state.On(app.EventRecordingClosed, func(data interface{}) {
		mw.SetTitle("EEG Scope")
		mw.traceView.SetLabels(nil)
		mw.overview.Clear()
		mw.updateStatus("Recording closed")
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		mw.syncLabels()
		mw.loadOverview()
		loader := mw.state.Loader
		if loader == nil {
			return
		}
		v := mw.traceView.Visible()
		if v.Empty() {
			return
		}
		if err := loader.LoadVisible(v); err != nil {
			mw.updateStatus("Reload failed: " + err.Error())
		}
	})

	mw.state.On(app.EventTriggersDetected, func(data interface{}) {
		if samples, ok := data.([]int64); ok {
			mw.overview.SetMarkers(samples)
		}
	})

	mw.state.On(app.EventGainChanged, func(data interface{}) {
		mw.traceView.SetGains(mw.state.SelectionGains())
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventSessionLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("EEG Scope - " + filepath.Base(path))
			mw.prefs.SetString(prefs.KeyLastSession, path)
			mw.prefs.Save()
			mw.updateStatus("Session loaded: " + path)
		}
	})

	mw.state.On(app.EventSessionSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("EEG Scope - " + filepath.Base(path))
			mw.prefs.SetString(prefs.KeyLastSession, path)
			mw.prefs.Save()
			mw.updateStatus("Session saved: " + path)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
	mw.prefs.Save()
}

// RestoreLastRecording reopens the recording used in the previous run.
func (mw *MainWindow) RestoreLastRecording() {
	path := mw.prefs.String(prefs.KeyLastRecording)
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	mw.OpenRecordingPath(path)
}

// OpenRecordingPath opens a recording, consulting the catalog for a known
// layout before falling back to inference, and finally asking the user
// when neither yields a channel count.
func (mw *MainWindow) OpenRecordingPath(path string) {
	mw.saveLastDir(path)
	mw.prefs.SetString(prefs.KeyLastRecording, path)
	mw.prefs.Save()

	numChannels := 0
	rate := 0.0
	if mw.catalog != nil {
		if entry, err := mw.catalog.Lookup(path); err == nil && entry != nil {
			numChannels = entry.NumChannels
			rate = entry.SamplingRate
		}
	}

	if err := mw.openWithLayout(path, numChannels, rate); err != nil {
		// Inference failed; ask for the layout explicitly.
		dialogs.NewOpenRecordingDialog(mw.Window, path, mw.prefs.Int(prefs.KeyChannelCount, 0), func(numChannels int, samplingRate float64) {
			if err := mw.openWithLayout(path, numChannels, samplingRate); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}).Show()
	}
}

func (mw *MainWindow) openWithLayout(path string, numChannels int, rate float64) error {
	selection := defaultSelection(numChannels)
	if err := mw.state.OpenRecording(path, numChannels, rate, selection); err != nil {
		return err
	}

	rec := mw.state.Recording
	if len(selection) == 0 {
		mw.state.SetSelection(defaultSelection(rec.NumChannels()))
	}

	windowSecs := mw.prefs.Float(prefs.KeyWindowSeconds, defaultWindowSeconds)
	end := int64(windowSecs * rec.SamplingRate())
	if end > rec.NumSamples() {
		end = rec.NumSamples()
	}
	loader := mw.state.Loader
	loader.SetAutoLoad(mw.prefs.Bool(prefs.KeyAutoLoadEnabled, true))
	if err := loader.LoadVisible(viewport.SampleRange{Start: 0, End: end}); err != nil {
		return err
	}
	return nil
}

// defaultSelection returns the first channels of a fresh recording, capped
// so very wide recordings open with a readable stack.
func defaultSelection(numChannels int) []int {
	if numChannels <= 0 {
		return nil
	}
	n := numChannels
	if n > defaultChannelsShown {
		n = defaultChannelsShown
	}
	sel := make([]int, n)
	for i := range sel {
		sel[i] = i
	}
	return sel
}

// rememberRecording records a successfully opened layout in the catalog
// and keeps the channel count as the dialog default for the next open.
func (mw *MainWindow) rememberRecording(rec *recording.Recording) {
	mw.prefs.SetInt(prefs.KeyChannelCount, rec.NumChannels())
	mw.prefs.Save()
	if mw.catalog == nil {
		return
	}
	mw.catalog.Remember(catalog.Entry{
		Path:         rec.Path(),
		NumChannels:  rec.NumChannels(),
		SamplingRate: rec.SamplingRate(),
		NumSamples:   rec.NumSamples(),
		LastOpened:   time.Now(),
	})
}

// Menu action handlers

func (mw *MainWindow) onOpenRecording() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.OpenRecordingPath(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".dat", ".bin", ".raw"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onCloseRecording() {
	mw.state.CloseRecording()
}

func (mw *MainWindow) onOpenSession() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadSession(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{sessionExtension}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveSession() {
	if mw.state.SessionPath == "" {
		mw.onSaveSessionAs()
		return
	}
	if err := mw.state.SaveSession(mw.state.SessionPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveSessionAs() {
	if mw.state.Recording == nil {
		mw.updateStatus("No recording open")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != sessionExtension {
			path += sessionExtension
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveSession(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("session" + sessionExtension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onExportData writes the loaded, processed window in the format implied
// by the chosen extension, plus a metadata sidecar.
func (mw *MainWindow) onExportData() {
	loader := mw.state.Loader
	if loader == nil {
		mw.updateStatus("No recording open")
		return
	}
	buf, span := loader.Current()
	if buf == nil {
		mw.updateStatus("No data loaded")
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)

		var writeErr error
		if filepath.Ext(path) == ".csv" {
			writeErr = export.WriteCSV(path, buf)
		} else {
			writeErr = export.WriteRaw(path, buf)
		}
		if writeErr != nil {
			dialog.ShowError(writeErr, mw.Window)
			return
		}
		if err := export.WriteMetadata(path, mw.buildMetadata(span)); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus(fmt.Sprintf("Exported %d samples x %d channels to %s",
			buf.Rows(), len(loader.Selection()), path))
	}, mw.Window)
	fd.SetFileName("export.csv")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportMetadata() {
	loader := mw.state.Loader
	if loader == nil {
		mw.updateStatus("No recording open")
		return
	}
	_, span := loader.Current()

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		if err := export.WriteMetadata(path, mw.buildMetadata(span)); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Metadata written to " + path)
	}, mw.Window)
	fd.SetFileName("export.json")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) buildMetadata(span viewport.SampleRange) export.Metadata {
	loader := mw.state.Loader
	return export.BuildMetadata(
		mw.state.Recording.Path(),
		mw.state.SessionID,
		loader.Selection(),
		span,
		loader.SamplingRate(),
		loader.Processing(),
		loader.Chain(),
	)
}

func (mw *MainWindow) onToggleAutoLoad() {
	enabled := !mw.prefs.Bool(prefs.KeyAutoLoadEnabled, true)
	mw.prefs.SetBool(prefs.KeyAutoLoadEnabled, enabled)
	mw.prefs.Save()
	mw.autoLoadItem.Label = autoLoadLabel(enabled)
	if l := mw.state.Loader; l != nil {
		l.SetAutoLoad(enabled)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About EEG Scope",
		fmt.Sprintf("EEG Scope v%s\n\n"+
			"A viewer for large raw EEG recordings with on-demand\n"+
			"windowed loading, filtering, and channel processing.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
