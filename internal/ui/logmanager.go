package ui

import (
	"fmt"

	"fyne.io/fyne/v2/widget"
)

// DefaultMaxLogMessages bounds the status bar history.
const DefaultMaxLogMessages = 100

// LogUIManager shows log messages one at a time in the status bar, with
// buttons to step through older ones. Use it from the UI thread only.
type LogUIManager struct {
	logMessages     []string
	currentLogIndex int
	maxLogMessages  int

	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

// NewLogUIManager wires the manager to its status bar widgets.
func NewLogUIManager(logLabel *widget.Label, upBtn, downBtn *widget.Button, maxMessages int) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	lm := &LogUIManager{
		logMessages:      make([]string, 0, maxMessages),
		currentLogIndex:  -1,
		maxLogMessages:   maxMessages,
		statusLogLabel:   logLabel,
		statusLogUpBtn:   upBtn,
		statusLogDownBtn: downBtn,
	}
	lm.UpdateLogDisplay()
	return lm
}

// AddLogMessage appends message and jumps to it.
func (lm *LogUIManager) AddLogMessage(message string) {
	lm.logMessages = append(lm.logMessages, message)
	if len(lm.logMessages) > lm.maxLogMessages {
		lm.logMessages = lm.logMessages[len(lm.logMessages)-lm.maxLogMessages:]
	}
	lm.currentLogIndex = len(lm.logMessages) - 1
	lm.UpdateLogDisplay()
}

// Messages returns the retained messages, oldest first.
func (lm *LogUIManager) Messages() []string {
	out := make([]string, len(lm.logMessages))
	copy(out, lm.logMessages)
	return out
}

// UpdateLogDisplay redraws the label and the button states.
func (lm *LogUIManager) UpdateLogDisplay() {
	if lm.statusLogLabel == nil || lm.statusLogUpBtn == nil || lm.statusLogDownBtn == nil {
		return
	}
	if len(lm.logMessages) == 0 {
		lm.statusLogLabel.SetText("")
		lm.statusLogUpBtn.Disable()
		lm.statusLogDownBtn.Disable()
		return
	}

	lm.currentLogIndex = min(max(lm.currentLogIndex, 0), len(lm.logMessages)-1)
	lm.statusLogLabel.SetText(fmt.Sprintf("[%d/%d] %s", lm.currentLogIndex+1, len(lm.logMessages), lm.logMessages[lm.currentLogIndex]))
	if lm.currentLogIndex <= 0 {
		lm.statusLogUpBtn.Disable()
	} else {
		lm.statusLogUpBtn.Enable()
	}
	if lm.currentLogIndex >= len(lm.logMessages)-1 {
		lm.statusLogDownBtn.Disable()
	} else {
		lm.statusLogDownBtn.Enable()
	}
}

// ShowPreviousLogMessage steps back one message.
func (lm *LogUIManager) ShowPreviousLogMessage() {
	if lm.currentLogIndex <= 0 {
		return
	}
	lm.currentLogIndex--
	lm.UpdateLogDisplay()
}

// ShowNextLogMessage steps forward one message.
func (lm *LogUIManager) ShowNextLogMessage() {
	if lm.currentLogIndex >= len(lm.logMessages)-1 {
		return
	}
	lm.currentLogIndex++
	lm.UpdateLogDisplay()
}
