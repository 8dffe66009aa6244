// Package ui adapts the engine to a bubbletea terminal program: it paints
// the snapshots the engine produces and turns key presses into intents.
package ui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/loganalyzer/rtlog/pkg/highlighter"
	"github.com/loganalyzer/rtlog/pkg/models"
	log "github.com/sirupsen/logrus"
)

// snapshotMsg delivers a frame from the engine to the program.
type snapshotMsg models.Snapshot

// Bridge implements engine.Renderer on top of a running tea.Program.
type Bridge struct {
	program *tea.Program
}

// NewBridge wraps p.
func NewBridge(p *tea.Program) *Bridge {
	return &Bridge{program: p}
}

// Render hands the snapshot to the program's event loop. It blocks until the
// loop accepts it and returns immediately once the program has exited.
func (b *Bridge) Render(s models.Snapshot) error {
	b.program.Send(snapshotMsg(s))
	return nil
}

// Options configures a Model.
type Options struct {
	Keys     KeyMap
	Theme    string
	PageSize int
	Intents  chan<- models.Intent
}

// Model represents the main TUI model
type Model struct {
	decoder     Decoder
	highlighter *highlighter.Highlighter
	help        help.Model
	intents     chan<- models.Intent

	// UI State
	width    int
	height   int
	ready    bool
	quitting bool
	showHelp bool

	// Last frame from the engine
	snap    models.Snapshot
	hasSnap bool

	// Input mode as of the last intent sent. It is replaced by the
	// snapshot's once the engine has applied every mode change sent.
	input   inputState
	sent    uint64
	modeSeq uint64

	// Viewport height last reported to the engine
	sentRows int
}

// NewModel creates a new TUI model
func NewModel(opts Options) *Model {
	h := help.New()
	return &Model{
		decoder:     Decoder{Keys: opts.Keys, PageSize: opts.PageSize},
		highlighter: highlighter.New(opts.Theme),
		help:        h,
		intents:     opts.Intents,
		sentRows:    -1,
	}
}

// Init implements the bubbletea.Model interface
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements the bubbletea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.syncViewport()

	case snapshotMsg:
		m.snap = models.Snapshot(msg)
		m.hasSnap = true
		if m.snap.IntentsApplied >= m.modeSeq {
			m.input = inputStateOf(m.snap)
		}
		m.syncViewport()

	case tea.KeyMsg:
		mode := m.input.mode()
		if mode == ModeNormal && msg.String() == "ctrl+h" {
			m.showHelp = !m.showHelp
			m.syncViewport()
			return m, nil
		}
		for _, in := range m.decoder.Decode(msg, mode, m.input.contextOpen) {
			if m.emit(in) && m.input.apply(in) {
				m.modeSeq = m.sent
			}
			if in.Kind == models.IntentQuit {
				m.quitting = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// Mode returns the mode the next key press is decoded in.
func (m *Model) Mode() Mode {
	return m.input.mode()
}

// emit forwards an intent without blocking the event loop and reports
// whether it was accepted.
func (m *Model) emit(in models.Intent) bool {
	if m.intents == nil {
		return false
	}
	select {
	case m.intents <- in:
		m.sent++
		return true
	default:
		log.WithField("intent", in.Kind).Debug("intent dropped, engine busy")
		return false
	}
}

// syncViewport tells the engine how many log rows fit when that changes.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	rows := m.logRows()
	if rows == m.sentRows {
		return
	}
	m.sentRows = rows
	m.emit(models.Intent{Kind: models.IntentResize, Width: m.width, Height: rows})
}

// Quitting reports whether a quit key was pressed.
func (m *Model) Quitting() bool {
	return m.quitting
}
