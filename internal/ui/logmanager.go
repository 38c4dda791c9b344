package ui

import (
	"fmt"

	"fyne.io/fyne/v2/widget"
)

const DefaultMaxLogMessages = 100

// LogUIManager keeps a bounded history of status messages and lets the user
// page through it from the status bar. Methods must run on the UI goroutine.
type LogUIManager struct {
	messages []string
	current  int
	max      int

	label    *widget.Label
	olderBtn *widget.Button
	newerBtn *widget.Button
}

// NewLogUIManager binds the history to its status bar widgets. Any widget
// may be nil, in which case only the history is kept.
func NewLogUIManager(label *widget.Label, olderBtn, newerBtn *widget.Button, maxMessages int) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	return &LogUIManager{
		messages: make([]string, 0, maxMessages),
		current:  -1,
		max:      maxMessages,
		label:    label,
		olderBtn: olderBtn,
		newerBtn: newerBtn,
	}
}

// AddLogMessage appends message, drops the oldest beyond the limit and jumps
// the display to the newest entry.
func (lm *LogUIManager) AddLogMessage(message string) {
	lm.messages = append(lm.messages, message)
	if len(lm.messages) > lm.max {
		lm.messages = lm.messages[len(lm.messages)-lm.max:]
	}
	lm.current = len(lm.messages) - 1
	lm.refresh()
}

// Messages returns a copy of the history, oldest first.
func (lm *LogUIManager) Messages() []string {
	out := make([]string, len(lm.messages))
	copy(out, lm.messages)
	return out
}

// Current returns the message being displayed.
func (lm *LogUIManager) Current() string {
	if lm.current < 0 || lm.current >= len(lm.messages) {
		return ""
	}
	return lm.messages[lm.current]
}

func setEnabled(b *widget.Button, on bool) {
	if b == nil {
		return
	}
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (lm *LogUIManager) refresh() {
	if len(lm.messages) == 0 {
		if lm.label != nil {
			lm.label.SetText("")
		}
		setEnabled(lm.olderBtn, false)
		setEnabled(lm.newerBtn, false)
		return
	}
	if lm.label != nil {
		lm.label.SetText(fmt.Sprintf("[%d/%d] %s", lm.current+1, len(lm.messages), lm.messages[lm.current]))
	}
	setEnabled(lm.olderBtn, lm.current > 0)
	setEnabled(lm.newerBtn, lm.current < len(lm.messages)-1)
}

// ShowOlder moves the display one message back.
func (lm *LogUIManager) ShowOlder() {
	if lm.current <= 0 {
		return
	}
	lm.current--
	lm.refresh()
}

// ShowNewer moves the display one message forward.
func (lm *LogUIManager) ShowNewer() {
	if lm.current >= len(lm.messages)-1 {
		return
	}
	lm.current++
	lm.refresh()
}
