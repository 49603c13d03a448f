package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindspeak-server/internal/emotion"
)

func TestTextScorer_NestedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I feel great", body["inputs"])

		w.Write([]byte(`[[{"label":"joy","score":0.91},{"label":"anger","score":0.02}]]`))
	}))
	defer srv.Close()

	scores, err := NewTextScorer(srv.URL, "hf_test", 0).ScoreText(context.Background(), "I feel great")

	require.NoError(t, err)
	assert.Equal(t, []emotion.LabelScore{{Label: "joy", Score: 0.91}, {Label: "anger", Score: 0.02}}, scores)
}

func TestTextScorer_FlatResponseWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[{"label":"sadness","score":0.5}]`))
	}))
	defer srv.Close()

	scores, err := NewTextScorer(srv.URL, "", 0).ScoreText(context.Background(), "meh")

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "sadness", scores[0].Label)
}

func TestTextScorer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20}`))
	}))
	defer srv.Close()

	_, err := NewTextScorer(srv.URL, "", 0).ScoreText(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "currently loading")
}

func TestTextScorer_NotConfigured(t *testing.T) {
	_, err := NewTextScorer("", "", 0).ScoreText(context.Background(), "hi")
	assert.Error(t, err)
}

func TestImageScorer_SendsJPEG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		_, format, err := image.Decode(bytes.NewReader(raw))
		assert.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		w.Write([]byte(`[{"label":"happy","score":0.8},{"label":"neutral","score":0.2}]`))
	}))
	defer srv.Close()

	scores, err := NewImageScorer(srv.URL, "tok", 0).ScoreImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 16, 16)))

	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestImageScorer_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":true}`))
	}))
	defer srv.Close()

	_, err := NewImageScorer(srv.URL, "", 0).ScoreImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	assert.Error(t, err)
}

func TestRelativeBox(t *testing.T) {
	poly := &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
		{X: 20, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 50}, {X: 20, Y: 50},
	}}

	box, ok := relativeBox(poly, 200, 100)

	require.True(t, ok)
	assert.InDelta(t, 0.1, box.XMin, 1e-9)
	assert.InDelta(t, 0.1, box.YMin, 1e-9)
	assert.InDelta(t, 0.2, box.Width, 1e-9)
	assert.InDelta(t, 0.4, box.Height, 1e-9)

	_, ok = relativeBox(nil, 200, 100)
	assert.False(t, ok)
	_, ok = relativeBox(&visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{{X: 5, Y: 5}}}, 200, 100)
	assert.False(t, ok)
}

func TestClientOptions(t *testing.T) {
	assert.Nil(t, ClientOptions("  "))
	assert.Len(t, ClientOptions(`{"type":"service_account"}`), 1)
	assert.Len(t, ClientOptions("/etc/gcp/creds.json"), 1)
}
