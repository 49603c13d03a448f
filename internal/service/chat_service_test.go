package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindspeak-server/internal/emotion"
)

type fixedTextScorer struct {
	scores []emotion.LabelScore
	err    error
}

func (s fixedTextScorer) ScoreText(context.Context, string) ([]emotion.LabelScore, error) {
	return s.scores, s.err
}

func newChatService(t *testing.T, scorer emotion.TextScorer, gen *stubGenerator) (*ChatService, *testStore) {
	t.Helper()
	store := newTestStore(t)
	var responder *ResponseGenerator
	if gen != nil {
		responder = NewResponseGenerator(gen, time.Second, nil)
	} else {
		responder = NewResponseGenerator(nil, 0, nil)
	}
	svc := NewChatService(
		store.sessionService(),
		emotion.NewTextClassifier(scorer, emotion.DefaultTextMinScore, nil),
		emotion.FusionEngine{Window: emotion.RecencyWindow},
		responder,
		nil,
	)
	return svc, store
}

func TestChatService_NewSessionTurn(t *testing.T) {
	gen := &stubGenerator{out: "It's okay to feel that way."}
	svc, store := newChatService(t, fixedTextScorer{scores: []emotion.LabelScore{
		{Label: "fear", Score: 0.72},
		{Label: "sadness", Score: 0.3},
		{Label: "joy", Score: 0.02},
	}}, gen)
	now := time.UnixMilli(1_700_000_010_000)
	svc.now = func() time.Time { return now }

	resp, err := svc.ProcessMessage(context.Background(), 11, &ChatRequest{
		Message:      "I feel anxious about work today",
		ImageEmotion: &emotion.ImageSample{Emotion: "sad", Confidence: 0.8, CapturedAt: now.UnixMilli() - 2000},
	})

	require.NoError(t, err)
	assert.Equal(t, "It's okay to feel that way.", resp.Response)
	assert.Equal(t, "fear", resp.DominantEmotion)
	assert.Equal(t, emotion.Distribution{{Emotion: "fear", Confidence: 0.72}, {Emotion: "sadness", Confidence: 0.3}}, resp.Emotions)
	assert.Contains(t, gen.prompt, " The user's text shows fear. Their facial expression shows sad.")

	session, err := svc.sessions.GetSession(context.Background(), resp.SessionID, 11)
	require.NoError(t, err)
	assert.Equal(t, "I feel anxious about...", session.Title)
	assert.Equal(t, int64(1), session.MessageCount)

	messages, err := store.messages.ListBySession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "fear", messages[0].DominantEmotion)
	assert.Equal(t, "It's okay to feel that way.", messages[0].Response)
	require.NotNil(t, messages[0].ImageEmotion.Data())
	assert.Equal(t, "sad", messages[0].ImageEmotion.Data().Emotion)
}

func TestChatService_ContinuesExistingSession(t *testing.T) {
	svc, _ := newChatService(t, nil, nil)
	ctx := context.Background()

	first, err := svc.ProcessMessage(ctx, 4, &ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help you today?", first.Response)
	assert.Equal(t, emotion.Neutral, first.DominantEmotion)
	assert.NotNil(t, first.Emotions)

	second, err := svc.ProcessMessage(ctx, 4, &ChatRequest{Message: "tell me about meditation", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	session, err := svc.sessions.GetSession(ctx, first.SessionID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), session.MessageCount)
	assert.Equal(t, "hello", session.Title)
}

func TestChatService_StaleImageIgnored(t *testing.T) {
	gen := &stubGenerator{out: "ok"}
	svc, _ := newChatService(t, nil, gen)
	now := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time { return now }

	_, err := svc.ProcessMessage(context.Background(), 1, &ChatRequest{
		Message:      "just checking in",
		ImageEmotion: &emotion.ImageSample{Emotion: "anger", CapturedAt: now.UnixMilli() - 15000},
	})

	require.NoError(t, err)
	assert.NotContains(t, gen.prompt, "facial expression")
	assert.Contains(t, gen.prompt, "companion focused on mindfulness and well-being.\n")
}

func TestChatService_Errors(t *testing.T) {
	svc, store := newChatService(t, fixedTextScorer{err: errors.New("down")}, nil)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, 1, &ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	owned, err := svc.ProcessMessage(ctx, 1, &ChatRequest{Message: "mine"})
	require.NoError(t, err)

	_, err = svc.ProcessMessage(ctx, 2, &ChatRequest{Message: "hijack", SessionID: owned.SessionID})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	count, err := store.messages.CountBySession(ctx, owned.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
