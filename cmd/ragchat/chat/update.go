package chat

import (
	"ragchat/internal/logging"
	"ragchat/internal/widget"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// chatResultMsg carries the outcome of one chat request.
type chatResultMsg struct {
	reply string
	err   error
}

// uploadResultMsg carries the outcome of one upload.
type uploadResultMsg struct {
	id  string
	err error
}

// Update handles one event.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.mode == pickerView {
			m.filepicker.Height = m.pickerHeight()
		}
		return m, nil

	case chatResultMsg:
		return m.handleChatResult(msg)

	case uploadResultMsg:
		return m.handleUploadResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Directory listings and other internal messages.
	if m.mode == pickerView {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.mode == pickerView {
		return m.handlePickerKey(msg)
	}

	if msg.Paste {
		if files, ok := droppedFiles(string(msg.Runes)); ok {
			logging.UIDebug("paste recognized as drop of %d file(s)", len(files))
			m.setFocus(focusInput)
			return m, m.submitFiles(files)
		}
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m.quit()

	case tea.KeyTab:
		if m.focus == focusInput {
			m.setFocus(focusZone)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil

	case tea.KeyCtrlO:
		return m.openPicker()

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		if msg.Paste {
			break
		}
		if m.focus == focusZone {
			return m.openPicker()
		}
		return m.handleSubmit()
	}

	if m.focus == focusZone {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.closePicker()
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		logging.UIDebug("picker selected %s", path)
		m.closePicker()
		return m, m.submitFiles([]widget.File{widget.LocalFile(path)})
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != chatView {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.inZone(msg.X, msg.Y) {
		return m.openPicker()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSubmit reads the field and starts a chat exchange. An empty field
// or a request in flight leaves everything untouched.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text, ok := m.state.BeginSend(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.input.Placeholder = m.state.Placeholder()
	m.refreshViewport()

	logging.Chat("sending message (%d chars)", len(text))
	return m, m.sendCmd(text)
}

func (m Model) handleChatResult(msg chatResultMsg) (tea.Model, tea.Cmd) {
	reply, ok := m.state.CompleteSend(msg.reply, msg.err)
	if !ok {
		return m, nil
	}
	if msg.err != nil {
		logging.Get(logging.CategoryChat).Warn("chat failed: %v", msg.err)
	} else {
		logging.Chat("reply received (%d lines)", len(reply.Lines()))
	}
	m.input.Placeholder = m.state.Placeholder()
	m.refreshViewport()
	return m, nil
}

func (m Model) handleUploadResult(msg uploadResultMsg) (tea.Model, tea.Cmd) {
	s, ok := m.state.Uploads.Complete(msg.id, msg.err)
	if !ok {
		return m, nil
	}
	if msg.err != nil {
		logging.Get(logging.CategoryUpload).Warn("upload %s failed: %v", s.FileName, msg.err)
	} else {
		logging.Upload("upload %s succeeded", s.FileName)
	}
	return m, nil
}

// submitFiles registers every file on the board in order and starts one
// request per file. The requests run concurrently.
func (m Model) submitFiles(files []widget.File) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(files))
	for _, f := range files {
		s := m.state.Uploads.Begin(f.Name)
		logging.Upload("upload %s started (id=%s)", f.Name, s.ID)
		cmds = append(cmds, m.uploadCmd(s.ID, f))
	}
	return tea.Batch(cmds...)
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		reply, err := widget.RunChat(ctx, backend, text)
		return chatResultMsg{reply: reply, err: err}
	}
}

func (m Model) uploadCmd(id string, f widget.File) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		return uploadResultMsg{id: id, err: widget.RunUpload(ctx, backend, f)}
	}
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.CurrentDirectory = m.pickerDir
	fp.AutoHeight = false
	fp.Height = m.pickerHeight()
	fp.Styles.Cursor = m.styles.Prompt
	m.filepicker = fp
	m.mode = pickerView
	logging.UIDebug("file picker opened at %s", m.pickerDir)
	return m, m.filepicker.Init()
}

func (m *Model) closePicker() {
	m.mode = chatView
	// Reset for next time.
	m.filepicker = filepicker.New()
}

func (m Model) pickerHeight() int {
	_, _, bodyHeight := m.layout()
	if h := bodyHeight - 2; h > minBodyRows {
		return h
	}
	return minBodyRows
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	logging.UIDebug("quit requested")
	m.Shutdown()
	return m, tea.Quit
}
