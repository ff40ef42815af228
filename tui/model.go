package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/model"
	relaymodel "github.com/haeksim/noonsongi/relay/model"
)

// Starter begins a generation run on a session.
type Starter interface {
	Start(ctx context.Context, sess *model.Session, payload *relaymodel.Payload) error
}

type stateMsg model.SessionState

type closedMsg struct{}

// Model is the terminal chat. It renders the same screens as the web page and ties the
// session's poll to its own lifetime: quitting closes the session.
type Model struct {
	ctx     context.Context
	sess    *model.Session
	starter Starter

	updates     <-chan model.SessionState
	unsubscribe func()
	state       model.SessionState

	input      textinput.Model
	spinner    spinner.Model
	attachment *relaymodel.Attachment
	readFile   func(string) ([]byte, error)

	width    int
	quitting bool
}

func New(ctx context.Context, sess *model.Session, starter Starter) Model {
	ti := textinput.New()
	ti.Placeholder = config.InputPlaceholder + " (Enter to send, /attach <pdf>, /reset, /quit)"
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	updates, unsubscribe := sess.Subscribe()
	return Model{
		ctx:         ctx,
		sess:        sess,
		starter:     starter,
		updates:     updates,
		unsubscribe: unsubscribe,
		state:       sess.Snapshot(),
		input:       ti,
		spinner:     sp,
		readFile:    os.ReadFile,
		width:       80,
	}
}

func waitForState(updates <-chan model.SessionState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(state)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForState(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m.quit()
		case tea.KeyEsc:
			m.sess.DismissAlert()
			return m, nil
		case tea.KeyEnter:
			// textinput is single line, so a modified Enter never inserts a newline either
			if msg.Alt {
				return m, nil
			}
			return m.handleSubmit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case stateMsg:
		m.state = model.SessionState(msg)
		// a failed run hands the prompt back for editing
		if m.state.Payload == nil && m.state.Result == "" && m.input.Value() == "" && m.state.Prompt != "" {
			m.input.SetValue(m.state.Prompt)
			m.input.CursorEnd()
		}
		return m, waitForState(m.updates)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.unsubscribe()
	m.sess.Close()
	return m, tea.Quit
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}

	payload := &relaymodel.Payload{Prompt: text, File: m.attachment}
	if err := m.starter.Start(m.ctx, m.sess, payload); err != nil {
		if !relaymodel.IsValidationError(err) {
			m.sess.Alert("Request failed: " + err.Error())
		}
		return m, nil
	}
	m.input.Reset()
	m.attachment = nil
	return m, m.spinner.Tick
}

func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return m.quit()
	case "/reset":
		m.sess.Reset()
		m.attachment = nil
	case "/detach":
		m.attachment = nil
	case "/attach":
		attachment, err := m.loadAttachment(arg)
		if err != nil {
			m.sess.Alert(err.Error())
			return m, nil
		}
		m.attachment = attachment
		m.sess.DismissAlert()
	default:
		m.sess.Alert(fmt.Sprintf("unknown command %s", name))
		return m, nil
	}
	m.input.Reset()
	return m, nil
}

func (m Model) loadAttachment(path string) (*relaymodel.Attachment, error) {
	if path == "" {
		return nil, fmt.Errorf("usage: /attach <path to pdf>")
	}
	data, err := m.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if int64(len(data)) > config.MaxAttachmentSize {
		return nil, relaymodel.ErrFileTooLarge
	}
	attachment := relaymodel.NewAttachment(filepath.Base(path), data)
	if config.RequirePDF && !attachment.IsPDF() {
		return nil, relaymodel.ErrNotPDF
	}
	return attachment, nil
}

// Run drives the terminal chat until the user quits or ctx is done.
func Run(ctx context.Context, sess *model.Session, starter Starter) error {
	p := tea.NewProgram(New(ctx, sess, starter), tea.WithContext(ctx))
	_, err := p.Run()
	sess.Close()
	return err
}
