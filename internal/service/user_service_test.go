package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"kindspeak-server/internal/emotion"
	"kindspeak-server/internal/model"
)

func addTurn(t *testing.T, store *testStore, userID int64, at time.Time, dist emotion.Distribution) {
	t.Helper()
	require.NoError(t, store.messages.Create(context.Background(), &model.ConversationMessage{
		ID:              fmt.Sprintf("m-%d-%d", userID, at.UnixNano()),
		UserID:          userID,
		SessionID:       "s",
		Message:         "m",
		Response:        "r",
		Emotions:        datatypes.NewJSONType(dist),
		DominantEmotion: dist.Dominant(),
		Timestamp:       at,
	}))
}

func TestUserService_GetStats(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store.users, store.sessions, store.messages, store.meditations)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	stats, err := svc.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, UserStats{AverageMood: 7.0}, *stats)

	// joy 8，sadness 3，fear 6
	addTurn(t, store, 1, base, emotion.Distribution{{Emotion: "joy", Confidence: 0.9}})
	addTurn(t, store, 1, base.Add(time.Minute), emotion.Distribution{
		{Emotion: "sadness", Confidence: 0.7}, {Emotion: "fear", Confidence: 0.2},
	})
	addTurn(t, store, 1, base.Add(2*time.Minute), emotion.Distribution{})
	addTurn(t, store, 2, base, emotion.Distribution{{Emotion: "anger", Confidence: 0.9}})

	meditations := NewMeditationService(store.meditations, nil)
	m, err := meditations.Start(ctx, 1, 5)
	require.NoError(t, err)
	_, err = meditations.Start(ctx, 1, 5)
	require.NoError(t, err)
	_, err = meditations.Complete(ctx, 1, m.ID)
	require.NoError(t, err)

	stats, err = svc.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalChats)
	assert.Equal(t, int64(1), stats.MeditationCount)
	assert.Equal(t, 5.7, stats.AverageMood)
}

func TestUserService_AverageMoodUsesRecentTurns(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store.users, store.sessions, store.messages, store.meditations)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	// 最早的 5 轮是 sadness，之后 20 轮是 joy
	for i := 0; i < 25; i++ {
		label := "joy"
		if i < 5 {
			label = "sadness"
		}
		addTurn(t, store, 1, base.Add(time.Duration(i)*time.Minute), emotion.Distribution{{Emotion: label, Confidence: 0.8}})
	}

	stats, err := svc.GetStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(25), stats.TotalChats)
	assert.Equal(t, 8.0, stats.AverageMood)
}

func TestMoodScore(t *testing.T) {
	assert.Equal(t, 8.0, moodScore("joy"))
	assert.Equal(t, 8.0, moodScore("happiness"))
	assert.Equal(t, 3.0, moodScore("sadness"))
	assert.Equal(t, 3.0, moodScore("anger"))
	assert.Equal(t, 6.0, moodScore("optimism"))
}
