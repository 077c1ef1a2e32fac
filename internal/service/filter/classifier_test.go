package filter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendTypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComprehend struct {
	input *comprehend.DetectSentimentInput
	out   *comprehend.DetectSentimentOutput
	err   error
}

func (f *fakeComprehend) DetectSentiment(_ context.Context, params *comprehend.DetectSentimentInput, _ ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestComprehendClassifierUsesNegativeScore(t *testing.T) {
	api := &fakeComprehend{out: &comprehend.DetectSentimentOutput{
		Sentiment:      comprehendTypes.SentimentTypeNegative,
		SentimentScore: &comprehendTypes.SentimentScore{Negative: aws.Float32(0.9)},
	}}
	classifier := NewComprehendClassifier(api, "", time.Second)

	score, err := classifier.Score(context.Background(), "you are awful")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, score, 1e-6)
	assert.Equal(t, comprehendTypes.LanguageCodeEn, api.input.LanguageCode)
	assert.Equal(t, "you are awful", aws.ToString(api.input.Text))
}

func TestComprehendClassifierTruncatesLongText(t *testing.T) {
	api := &fakeComprehend{out: &comprehend.DetectSentimentOutput{}}
	classifier := NewComprehendClassifier(api, "en", 0)

	text := strings.Repeat("a", 4999) + "é" + strings.Repeat("b", 100)
	score, err := classifier.Score(context.Background(), text)
	require.NoError(t, err)
	assert.Zero(t, score)

	sent := aws.ToString(api.input.Text)
	assert.Len(t, sent, 4999)
	assert.LessOrEqual(t, len(sent), comprehendMaxBytes)
}

func TestComprehendClassifierWrapsError(t *testing.T) {
	api := &fakeComprehend{err: errors.New("AccessDenied")}
	_, err := NewComprehendClassifier(api, "en", 0).Score(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestOpenAIModerationClassifierTakesMaxScore(t *testing.T) {
	var got openai.ModerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/moderations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"modr-1","model":"text-moderation-latest","results":[{"flagged":true,"category_scores":{"hate":0.2,"violence":0.93,"sexual":0.01}}]}`))
	}))
	defer srv.Close()

	clientConfig := openai.DefaultConfig("test-key")
	clientConfig.BaseURL = srv.URL + "/v1"
	classifier := NewOpenAIModerationClassifier(openai.NewClientWithConfig(clientConfig), "text-moderation-latest", time.Second)

	score, err := classifier.Score(context.Background(), "some text")
	require.NoError(t, err)
	assert.InDelta(t, 0.93, score, 1e-6)
	assert.Equal(t, "some text", got.Input)
	assert.Equal(t, "text-moderation-latest", got.Model)
}

func TestTruncateBytesKeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", truncateBytes("abc", 5))
	assert.Equal(t, "a", truncateBytes("aé", 2))
	assert.Equal(t, "aé", truncateBytes("aéb", 3))
}
