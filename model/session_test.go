package model

import (
	"context"
	"testing"
	"time"

	relaymodel "github.com/haeksim/noonsongi/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

var strictRules = relaymodel.Rules{RequireFile: true, RequirePDF: true}

func newPayload(prompt string) *relaymodel.Payload {
	return &relaymodel.Payload{Prompt: prompt, File: relaymodel.NewAttachment("notes.pdf", samplePDF)}
}

func TestNewSessionIsEmpty(t *testing.T) {
	s := NewSession("s1")
	snap := s.Snapshot()

	assert.Equal(t, "s1", snap.ID)
	assert.Empty(t, snap.Prompt)
	assert.Nil(t, snap.Payload)
	assert.Empty(t, snap.Result)
	assert.Equal(t, SessionStatusIdle, snap.Status)
}

func TestBeginRejectsInvalidPayload(t *testing.T) {
	s := NewSession("s1")
	_, _, err := s.Begin(context.Background(), &relaymodel.Payload{Prompt: "summarize"}, strictRules)
	assert.ErrorIs(t, err, relaymodel.ErrMissingFile)

	snap := s.Snapshot()
	assert.Nil(t, snap.Payload)
	assert.Equal(t, SessionStatusIdle, snap.Status)
	assert.False(t, s.Running())
}

func TestSessionCompleteFlow(t *testing.T) {
	s := NewSession("s1")
	s.SetPrompt("make a song")

	ctx, gen, err := s.Begin(context.Background(), newPayload("make a song"), strictRules)
	require.NoError(t, err)
	assert.True(t, s.Running())

	assert.True(t, s.SetTaskID(gen, "abc"))
	assert.True(t, s.RecordPoll(gen, 1))
	assert.True(t, s.RecordPoll(gen, 2))

	pending := s.Snapshot()
	assert.Equal(t, SessionStatusPending, pending.Status)
	assert.Empty(t, pending.Result, "pending polls must not touch the result")
	assert.Equal(t, 2, pending.Polls)

	assert.True(t, s.Complete(gen, "https://x/v.mp4"))
	assert.False(t, s.Fail(gen, "late failure"), "only one terminal outcome")
	assert.ErrorIs(t, ctx.Err(), context.Canceled, "the run context is released once done")

	snap := s.Snapshot()
	assert.Equal(t, SessionStatusCompleted, snap.Status)
	assert.Equal(t, "https://x/v.mp4", snap.Result)
	assert.Equal(t, "abc", snap.TaskID)
	assert.Empty(t, snap.Alert)
	require.NotNil(t, snap.Payload)
	assert.Equal(t, "make a song", snap.Payload.Prompt)
}

func TestSessionFailKeepsPrompt(t *testing.T) {
	s := NewSession("s1")
	_, gen, err := s.Begin(context.Background(), newPayload("make a song"), strictRules)
	require.NoError(t, err)

	assert.True(t, s.Fail(gen, "bad file"))
	assert.False(t, s.Complete(gen, "https://x/v.mp4"))

	snap := s.Snapshot()
	assert.Equal(t, SessionStatusFailed, snap.Status)
	assert.Equal(t, "bad file", snap.Alert)
	assert.Nil(t, snap.Payload)
	assert.Equal(t, "make a song", snap.Prompt)

	s.DismissAlert()
	assert.Empty(t, s.Snapshot().Alert)
}

func TestBeginCancelsPreviousRun(t *testing.T) {
	s := NewSession("s1")
	first, oldGen, err := s.Begin(context.Background(), newPayload("first"), strictRules)
	require.NoError(t, err)

	second, newGen, err := s.Begin(context.Background(), newPayload("second"), strictRules)
	require.NoError(t, err)

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
	assert.False(t, s.Complete(oldGen, "https://x/stale.mp4"), "stale run must not deliver")
	assert.True(t, s.Complete(newGen, "https://x/fresh.mp4"))
	assert.Equal(t, "https://x/fresh.mp4", s.Snapshot().Result)
}

func TestResetCancelsRun(t *testing.T) {
	s := NewSession("s1")
	ctx, gen, err := s.Begin(context.Background(), newPayload("first"), strictRules)
	require.NoError(t, err)

	s.Reset()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, s.Complete(gen, "https://x/v.mp4"))

	snap := s.Snapshot()
	assert.Equal(t, "s1", snap.ID)
	assert.Empty(t, snap.Prompt)
	assert.Nil(t, snap.Payload)
	assert.Equal(t, SessionStatusIdle, snap.Status)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewSession("s1")
	_, _, err := s.Begin(context.Background(), newPayload("make a song"), strictRules)
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Payload.Prompt = "changed"
	snap.Payload.File.Data[0] = 'X'

	again := s.Snapshot()
	assert.Equal(t, "make a song", again.Payload.Prompt)
	assert.Equal(t, byte('%'), again.Payload.File.Data[0])
}

func TestSubscribeReceivesLatestState(t *testing.T) {
	s := NewSession("s1")
	updates, cancel := s.Subscribe()
	defer cancel()

	initial := <-updates
	assert.Equal(t, SessionStatusIdle, initial.Status)

	s.SetPrompt("a")
	s.SetPrompt("ab")
	s.SetPrompt("abc")

	select {
	case latest := <-updates:
		assert.Equal(t, "abc", latest.Prompt, "intermediate states are coalesced")
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestCloseEndsSubscriptionsAndRuns(t *testing.T) {
	s := NewSession("s1")
	updates, _ := s.Subscribe()
	<-updates

	ctx, _, err := s.Begin(context.Background(), newPayload("first"), strictRules)
	require.NoError(t, err)
	<-updates

	s.Close()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	_, open := <-updates
	assert.False(t, open)

	_, _, err = s.Begin(context.Background(), newPayload("again"), strictRules)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(2, time.Hour)
	defer store.Close()

	a := store.GetOrCreate("a")
	assert.Same(t, a, store.GetOrCreate("a"))

	ctx, _, err := a.Begin(context.Background(), newPayload("a"), strictRules)
	require.NoError(t, err)

	store.GetOrCreate("b")
	store.GetOrCreate("c")
	assert.Equal(t, 2, store.Len())

	_, ok := store.Get("a")
	assert.False(t, ok, "least recently used session is evicted")
	assert.ErrorIs(t, ctx.Err(), context.Canceled, "eviction cancels the poll")
	assert.Zero(t, store.Running())

	_, _, err = store.GetOrCreate("b").Begin(context.Background(), newPayload("b"), strictRules)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Running())
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	store := NewSessionStore(8, 20*time.Millisecond)
	defer store.Close()

	first := store.GetOrCreate("a")
	time.Sleep(50 * time.Millisecond)

	assert.NotSame(t, first, store.GetOrCreate("a"))
}
