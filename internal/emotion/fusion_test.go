package emotion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse(t *testing.T) {
	const now = int64(1_700_000_000_000)
	joy := Distribution{{Emotion: "joy", Confidence: 0.8}, {Emotion: "fear", Confidence: 0.2}}

	tests := []struct {
		name  string
		text  Distribution
		image *ImageSample
		want  string
	}{
		{name: "no signals", text: Distribution{}, want: ""},
		{name: "nil text", text: nil, want: ""},
		{name: "text only", text: joy, want: " The user's text shows joy."},
		{
			name:  "text and recent image",
			text:  joy,
			image: &ImageSample{Emotion: "sadness", Confidence: 0.6, CapturedAt: now - 2000},
			want:  " The user's text shows joy. Their facial expression shows sadness.",
		},
		{
			name:  "image only",
			text:  Distribution{},
			image: &ImageSample{Emotion: "happy", CapturedAt: now - 500},
			want:  " Their facial expression shows happy.",
		},
		{
			name:  "stale image",
			text:  Distribution{},
			image: &ImageSample{Emotion: "anger", CapturedAt: now - 15000},
			want:  "",
		},
		{
			name:  "exactly at window",
			text:  joy,
			image: &ImageSample{Emotion: "anger", CapturedAt: now - 10000},
			want:  " The user's text shows joy.",
		},
		{
			name:  "neutral image",
			text:  joy,
			image: &ImageSample{Emotion: "neutral", CapturedAt: now},
			want:  " The user's text shows joy.",
		},
		{
			name: "image label wins over distribution",
			text: Distribution{},
			image: &ImageSample{
				Emotions:   Distribution{{Emotion: "surprise", Confidence: 0.9}},
				Emotion:    "happy",
				CapturedAt: now - 100,
			},
			want: " Their facial expression shows happy.",
		},
		{
			name: "distribution used without label",
			text: Distribution{},
			image: &ImageSample{
				Emotions:   Distribution{{Emotion: "surprise", Confidence: 0.9}},
				CapturedAt: now - 100,
			},
			want: " Their facial expression shows surprise.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fuse(tt.text, tt.image, now))
		})
	}
}

func TestFusionEngine_CustomWindow(t *testing.T) {
	sample := &ImageSample{Emotion: "fear", CapturedAt: 0}
	engine := FusionEngine{Window: 30 * time.Second}

	assert.Equal(t, " Their facial expression shows fear.", engine.Fuse(nil, sample, 20000))
	assert.Equal(t, "", FusionEngine{Window: time.Second}.Fuse(nil, sample, 20000))
}

func TestImageSample_UnmarshalJSON(t *testing.T) {
	var s ImageSample
	require.NoError(t, json.Unmarshal([]byte(`{"dominant_emotion":"happy","confidence":0.8,"timestamp":42}`), &s))
	assert.Equal(t, "happy", s.Emotion)
	assert.Equal(t, int64(42), s.CapturedAt)

	var both ImageSample
	require.NoError(t, json.Unmarshal([]byte(`{"emotion":"sad","dominant_emotion":"happy"}`), &both))
	assert.Equal(t, "sad", both.Emotion)
}

func TestImageSample_DominantNil(t *testing.T) {
	var s *ImageSample
	assert.Equal(t, Neutral, s.Dominant())
	assert.Equal(t, Neutral, (&ImageSample{Emotion: "  "}).Dominant())
}
