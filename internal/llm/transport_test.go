package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestBedrockTransport(t *testing.T) {
	api := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: ` {"intent":"greeting"} `}},
		}},
	}}
	tr, err := NewBedrockTransport(api, "anthropic.claude-3-haiku", 0.7, 256)
	require.NoError(t, err)

	text, err := tr.SubmitPrompt(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"greeting"}`, text)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	require.Len(t, api.input.Messages, 1)
	assert.Equal(t, int32(256), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
}

func TestBedrockTransportErrors(t *testing.T) {
	_, err := NewBedrockTransport(&fakeConverse{}, " ", 0, 0)
	require.Error(t, err)

	tr, err := NewBedrockTransport(&fakeConverse{err: errors.New("throttled")}, "model", -1, 0)
	require.NoError(t, err)
	_, err = tr.SubmitPrompt(context.Background(), "hola")
	require.ErrorContains(t, err, "throttled")

	empty, _ := NewBedrockTransport(&fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{}},
	}}, "model", -1, 0)
	_, err = empty.SubmitPrompt(context.Background(), "hola")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestVertexTransport(t *testing.T) {
	var got vertexRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/projects/p/locations/us-central1/endpoints/123:generateContent", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"intent\":"},{"text":"\"faq_price\"}"}]}}]}`))
	}))
	defer srv.Close()

	tr := NewVertexTransportWithClient(srv.Client(), srv.URL+"/v1/projects/p/locations/us-central1/endpoints/123:generateContent", 0.7, 0)
	text, err := tr.SubmitPrompt(context.Background(), "cuánto cuestan las uñas")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"faq_price"}`, text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "cuánto cuestan las uñas", got.Contents[0].Parts[0].Text)
	assert.Equal(t, int32(512), got.GenerationConfig.MaxOutputTokens)
}

func TestVertexTransportErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"permission denied","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	tr := NewVertexTransportWithClient(srv.Client(), srv.URL, 0.7, 128)
	_, err := tr.SubmitPrompt(context.Background(), "hola")
	require.ErrorContains(t, err, "PERMISSION_DENIED")
}

func TestVertexEndpoint(t *testing.T) {
	assert.Equal(t,
		"https://us-central1-aiplatform.googleapis.com/v1/projects/p/endpoints/9:generateContent",
		vertexEndpoint("", "projects/p/endpoints/9"))
}

func TestOpenAITransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"¡Hola!"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	tr, err := NewOpenAITransport("sk-test", "", srv.URL, 0.7, 100)
	require.NoError(t, err)
	text, err := tr.SubmitPrompt(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", text)
}

func TestOpenAITransportRequiresKey(t *testing.T) {
	_, err := NewOpenAITransport("", "", "", 0, 0)
	require.Error(t, err)
}

func TestFallbackTransport(t *testing.T) {
	failing := TransportFunc(func(context.Context, string) (string, error) { return "", errors.New("down") })
	ok := TransportFunc(func(_ context.Context, prompt string) (string, error) { return "fallback:" + prompt, nil })

	text, err := NewFallbackTransport(failing, ok, logging.Discard()).SubmitPrompt(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "fallback:hola", text)

	_, err = NewFallbackTransport(failing, nil, logging.Discard()).SubmitPrompt(context.Background(), "hola")
	require.ErrorContains(t, err, "down")

	_, err = NewFallbackTransport(failing, failing, logging.Discard()).SubmitPrompt(context.Background(), "hola")
	require.Error(t, err)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := TransportFunc(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("boom")
	})
	br := NewBreakerTransport(failing, BreakerSettings{ConsecutiveFailures: 2, Cooldown: time.Hour}, logging.Discard())

	for i := 0; i < 2; i++ {
		_, err := br.SubmitPrompt(context.Background(), "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrBreakerOpen)
	}
	_, err := br.SubmitPrompt(context.Background(), "x")
	require.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "open", br.State())
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	br := NewBreakerTransport(TransportFunc(func(context.Context, string) (string, error) { return "ok", nil }), BreakerSettings{}, logging.Discard())
	text, err := br.SubmitPrompt(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestWithTimeout(t *testing.T) {
	slow := TransportFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).SubmitPrompt(context.Background(), "x")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type recordingObserver struct {
	mu       sync.Mutex
	provider string
	err      error
	count    int
}

func (o *recordingObserver) ObserveLLM(provider string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.provider, o.err = provider, err
	o.count++
}

func TestInstrument(t *testing.T) {
	obs := &recordingObserver{}
	tr := Instrument(TransportFunc(func(context.Context, string) (string, error) { return "", errors.New("x") }), ProviderBedrock, obs)
	_, _ = tr.SubmitPrompt(context.Background(), "hola")
	assert.Equal(t, 1, obs.count)
	assert.Equal(t, ProviderBedrock, obs.provider)
	assert.Error(t, obs.err)
}

func TestResolveProvider(t *testing.T) {
	assert.Equal(t, ProviderBedrock, ResolveProvider(Config{Provider: " Bedrock"}))
	assert.Equal(t, ProviderVertex, ResolveProvider(Config{TunedModelName: "projects/p/endpoints/1"}))
	assert.Equal(t, ProviderGemini, ResolveProvider(Config{}))
}

func TestNewSelectsStrategy(t *testing.T) {
	client, err := New(context.Background(), Config{Provider: ProviderOpenAI, OpenAIAPIKey: "sk", BreakerEnabled: true}, Deps{Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, client.Provider())
	assert.False(t, client.Tuned())
	assert.NoError(t, client.Close())

	_, err = New(context.Background(), Config{Provider: "llama"}, Deps{})
	require.ErrorContains(t, err, "unknown provider")

	_, err = New(context.Background(), Config{Provider: ProviderBedrock, BedrockModelID: "m"}, Deps{})
	require.ErrorContains(t, err, "aws config")

	_, err = New(context.Background(), Config{Provider: ProviderOpenAI, OpenAIAPIKey: "sk", FallbackProvider: ProviderBedrock}, Deps{})
	require.ErrorContains(t, err, "fallback provider")
}
