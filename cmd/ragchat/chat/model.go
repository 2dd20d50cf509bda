// Package chat implements the interactive terminal client: a transcript
// pane, a message field and an upload zone, all driven by widget.State.
package chat

import (
	"context"
	"os"

	"ragchat/cmd/ragchat/ui"
	"ragchat/internal/config"
	"ragchat/internal/widget"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Config holds configuration for initializing the chat interface.
type Config struct {
	Backend widget.Backend
	// Port is quoted in the connection failure message.
	Port string
	UI   config.UIConfig
	// PickerDir is where the file picker starts; the working directory
	// when empty.
	PickerDir string
}

// focusArea is the element receiving keys in the chat view.
type focusArea int

const (
	focusInput focusArea = iota
	focusZone
)

// viewMode determines which component is active.
type viewMode int

const (
	chatView viewMode = iota
	pickerView
)

const (
	headerHeight = 1
	footerHeight = 1
	inputHeight  = 3
	minBodyRows  = 3
)

// Model is the Bubble Tea model for the interactive client.
type Model struct {
	// UI components
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model
	styles     ui.Styles
	renderer   *glamour.TermRenderer

	uiConfig  config.UIConfig
	pickerDir string

	// Component state; shared by copies of the model, mutated only in Update.
	state   *widget.State
	backend widget.Backend

	focus focusArea
	mode  viewMode

	width  int
	height int
	ready  bool

	// ctx is cancelled on quit, aborting in-flight requests.
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the model. Call Shutdown (or quit through the UI) to cancel
// outstanding requests.
func New(cfg Config) Model {
	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode))

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styles.Prompt
	ti.Placeholder = widget.DefaultPlaceholder
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	dir := cfg.PickerDir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		input:      ti,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		filepicker: filepicker.New(),
		styles:     styles,
		uiConfig:   cfg.UI,
		pickerDir:  dir,
		state:      widget.NewState(cfg.Port),
		backend:    cfg.Backend,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init starts the cursor blink and the loader spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// State exposes the component state, mainly for tests and the caller
// after the program exits.
func (m Model) State() *widget.State {
	return m.state
}

// Shutdown cancels every in-flight request.
func (m Model) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
}

// layout splits the window into the transcript pane and the upload zone.
func (m Model) layout() (chatWidth, zoneWidth, bodyHeight int) {
	ratio := m.uiConfig.ChatPaneRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = config.DefaultUIConfig().ChatPaneRatio
	}
	chatWidth = int(float64(m.width) * ratio)
	zoneWidth = m.width - chatWidth
	bodyHeight = m.height - headerHeight - footerHeight - inputHeight
	if bodyHeight < minBodyRows {
		bodyHeight = minBodyRows
	}
	return chatWidth, zoneWidth, bodyHeight
}

// inZone reports whether a screen cell lies inside the upload zone.
func (m Model) inZone(x, y int) bool {
	chatWidth, _, bodyHeight := m.layout()
	return x >= chatWidth && x < m.width && y >= headerHeight && y < headerHeight+bodyHeight
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	chatWidth, _, bodyHeight := m.layout()
	m.viewport.Width = chatWidth
	m.viewport.Height = bodyHeight
	// Leaves room for the box border, padding and the loader spinner.
	m.input.Width = width - 10

	if m.uiConfig.Markdown {
		wrap := m.uiConfig.WordWrap
		if wrap <= 0 {
			wrap = chatWidth - 4
		}
		style := "light"
		if m.styles.Theme.IsDark {
			style = "dark"
		}
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrap),
			// Replies use bare \n for line breaks.
			glamour.WithPreservedNewLines(),
		)
	}
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}
