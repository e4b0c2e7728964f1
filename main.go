// Package main provides the entry point for the EEG Scope application.
package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"eeg-scope/internal/app"
	"eeg-scope/ui/mainwindow"
	"eeg-scope/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	fyneApp := fyneapp.NewWithID("io.eegscope.viewer")
	fyneApp.Settings().SetTheme(&app.ScopeTheme{})
	state := app.NewState()
	p := prefs.Load()

	mw := mainwindow.New(fyneApp, state, p)

	// An argument is either a session file or a recording; with no
	// argument, reopen whatever was open last time.
	if len(os.Args) > 1 {
		path := os.Args[1]
		if strings.EqualFold(filepath.Ext(path), ".eegsession") {
			if err := state.LoadSession(path); err != nil {
				log.Printf("load session %s: %v", path, err)
			}
		} else {
			mw.OpenRecordingPath(path)
		}
	} else {
		mw.RestoreLastRecording()
	}

	mw.ShowAndRun()
}
