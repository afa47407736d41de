package ui

import "fyne.io/fyne/v2"

// fyneExecutor runs background work on plain goroutines and marshals
// results back with fyne.Do.
type fyneExecutor struct{}

func (fyneExecutor) Go(fn func()) { go fn() }

func (fyneExecutor) Do(fn func()) { fyne.Do(fn) }
