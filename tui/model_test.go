package tui

import (
	"context"
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/haeksim/noonsongi/model"
	relaymodel "github.com/haeksim/noonsongi/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// recordingStarter begins runs on the session without polling anything.
type recordingStarter struct {
	payloads   []*relaymodel.Payload
	ctx        context.Context
	generation uint64
}

func (s *recordingStarter) Start(ctx context.Context, sess *model.Session, payload *relaymodel.Payload) error {
	runCtx, generation, err := sess.Begin(ctx, payload, relaymodel.Rules{RequireFile: true, RequirePDF: true})
	if err != nil {
		sess.Alert(err.Error())
		return err
	}
	s.ctx = runCtx
	s.generation = generation
	s.payloads = append(s.payloads, payload)
	return nil
}

func newTestModel(t *testing.T) (Model, *model.Session, *recordingStarter) {
	t.Helper()
	sess := model.NewSession("tui")
	starter := &recordingStarter{}
	m := New(context.Background(), sess, starter)
	m.readFile = func(path string) ([]byte, error) {
		switch path {
		case "notes.pdf":
			return samplePDF, nil
		case "notes.txt":
			return []byte("plain text"), nil
		}
		return nil, os.ErrNotExist
	}
	return m, sess, starter
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(t *testing.T, m Model, key tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

// syncState feeds the latest session state to the model the way the subscription would.
func syncState(m Model, sess *model.Session) Model {
	next, _ := m.Update(stateMsg(sess.Snapshot()))
	return next.(Model)
}

func TestStartScreen(t *testing.T) {
	m, _, _ := newTestModel(t)

	out := m.View()
	assert.Contains(t, out, "What do you want summarized?")
	assert.Contains(t, out, "Verify important information.")
}

func TestSubmitWithAttachment(t *testing.T) {
	m, sess, starter := newTestModel(t)

	m = typeText(t, m, "/attach notes.pdf")
	m, _ = press(t, m, tea.KeyEnter)
	require.NotNil(t, m.attachment)
	assert.Equal(t, "notes.pdf", m.attachment.Name)
	assert.Contains(t, m.View(), "attached: notes.pdf")

	m = typeText(t, m, "make a song")
	m, _ = press(t, m, tea.KeyEnter)
	require.Len(t, starter.payloads, 1)
	assert.Equal(t, "make a song", starter.payloads[0].Prompt)
	assert.Empty(t, m.input.Value())
	assert.Nil(t, m.attachment, "the attachment is consumed by the submission")

	m = syncState(m, sess)
	out := m.View()
	assert.Contains(t, out, "make a song")
	assert.Contains(t, out, "generating your video")

	sess.Complete(starter.generation, "https://x/v.mp4")
	m = syncState(m, sess)
	out = m.View()
	assert.Contains(t, out, "https://x/v.mp4")
	assert.NotContains(t, out, "generating your video")
}

func TestSubmitWithoutAttachmentAlerts(t *testing.T) {
	m, sess, starter := newTestModel(t)

	m = typeText(t, m, "make a song")
	m, _ = press(t, m, tea.KeyEnter)
	assert.Empty(t, starter.payloads)
	assert.Equal(t, "make a song", m.input.Value(), "the prompt stays for editing")

	m = syncState(m, sess)
	assert.Contains(t, m.View(), relaymodel.ErrMissingFile.Error())

	m, _ = press(t, m, tea.KeyEsc)
	m = syncState(m, sess)
	assert.NotContains(t, m.View(), relaymodel.ErrMissingFile.Error())
}

func TestAttachRejectsNonPDF(t *testing.T) {
	m, sess, _ := newTestModel(t)

	m = typeText(t, m, "/attach notes.txt")
	m, _ = press(t, m, tea.KeyEnter)
	assert.Nil(t, m.attachment)
	assert.Equal(t, relaymodel.ErrNotPDF.Error(), sess.Snapshot().Alert)

	m.input.Reset()
	m = typeText(t, m, "/attach missing.pdf")
	m, _ = press(t, m, tea.KeyEnter)
	assert.Nil(t, m.attachment)
	assert.Contains(t, sess.Snapshot().Alert, "cannot read missing.pdf")
}

func TestFailedRunRestoresPrompt(t *testing.T) {
	m, sess, starter := newTestModel(t)

	m = typeText(t, m, "/attach notes.pdf")
	m, _ = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "make a song")
	m, _ = press(t, m, tea.KeyEnter)
	require.Len(t, starter.payloads, 1)

	sess.Fail(starter.generation, "Generation failed: bad file")
	m = syncState(m, sess)

	assert.Equal(t, "make a song", m.input.Value())
	out := m.View()
	assert.Contains(t, out, "Generation failed: bad file")
	assert.Contains(t, out, "What do you want summarized?")
}

func TestResetCommand(t *testing.T) {
	m, sess, starter := newTestModel(t)

	m = typeText(t, m, "/attach notes.pdf")
	m, _ = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "make a song")
	m, _ = press(t, m, tea.KeyEnter)
	require.NotNil(t, starter.ctx)

	m = typeText(t, m, "/reset")
	m, _ = press(t, m, tea.KeyEnter)
	assert.True(t, errors.Is(starter.ctx.Err(), context.Canceled))

	m = syncState(m, sess)
	assert.Contains(t, m.View(), "What do you want summarized?")
}

func TestCtrlCCancelsPoll(t *testing.T) {
	m, sess, starter := newTestModel(t)

	m = typeText(t, m, "/attach notes.pdf")
	m, _ = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "make a song")
	m, _ = press(t, m, tea.KeyEnter)

	m, cmd := press(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, starter.ctx.Err(), context.Canceled)
	assert.False(t, sess.Running())
	assert.Empty(t, m.View())
}

func TestUnknownCommand(t *testing.T) {
	m, sess, _ := newTestModel(t)

	m = typeText(t, m, "/dance")
	_, _ = press(t, m, tea.KeyEnter)
	assert.Equal(t, "unknown command /dance", sess.Snapshot().Alert)
}
