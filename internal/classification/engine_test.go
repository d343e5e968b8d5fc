package classification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/jonathan/recycling-locator/internal/llm"
	"github.com/jonathan/recycling-locator/internal/types"
)

type fakeClient struct {
	response string
	err      error
	prompts  []string
	tiers    []llm.ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

func unlimited() *Options {
	return &Options{Tier: llm.TierLite, RequestsPerMinute: 0}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     types.Classification
	}{
		{
			name:     "plain JSON",
			response: `{"materials_category": "Batteries", "materials_accepted": ["AA batteries", "car batteries"]}`,
			want:     types.Classification{MaterialsCategory: types.CategoryBatteries, MaterialsAccepted: []string{"AA batteries", "car batteries"}},
		},
		{
			name:     "fenced JSON",
			response: "```json\n{\"materials_category\": \"Electronics\", \"materials_accepted\": [\"laptops\"]}\n```",
			want:     types.Classification{MaterialsCategory: types.CategoryElectronics, MaterialsAccepted: []string{"laptops"}},
		},
		{
			name:     "surrounding prose",
			response: "Here you go: {\"materials_category\": \"Textiles/Clothing\", \"materials_accepted\": [\"shoes\"]} Thanks!",
			want:     types.Classification{MaterialsCategory: types.CategoryTextiles, MaterialsAccepted: []string{"shoes"}},
		},
		{
			name:     "category case normalized and duplicates removed",
			response: `{"materials_category": " paint & chemicals ", "materials_accepted": ["paint", " paint", "", "solvents"]}`,
			want:     types.Classification{MaterialsCategory: types.CategoryPaintChemicals, MaterialsAccepted: []string{"paint", "solvents"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "empty", response: ""},
		{name: "not JSON", response: "I cannot help with that."},
		{name: "truncated", response: `{"materials_category": "Electronics", "materials_accepted": [`},
		{name: "missing category", response: `{"materials_accepted": ["laptops"]}`},
		{name: "missing materials", response: `{"materials_category": "Electronics"}`},
		{name: "unknown category", response: `{"materials_category": "Furniture", "materials_accepted": ["sofas"]}`},
		{name: "empty materials", response: `{"materials_category": "Electronics", "materials_accepted": []}`},
		{name: "blank materials", response: `{"materials_category": "Electronics", "materials_accepted": ["  "]}`},
		{name: "wrong types", response: `{"materials_category": 5, "materials_accepted": "laptops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.response)
			require.Error(t, err)
			var respErr *ResponseError
			assert.ErrorAs(t, err, &respErr)
		})
	}
}

func TestEngine_Classify_Remote(t *testing.T) {
	client := &fakeClient{response: `{"materials_category": "Electronics", "materials_accepted": ["laptops", "monitors"]}`}
	e := NewEngine(client, unlimited(), zaptest.NewLogger(t))

	out := e.Classify(context.Background(), "laptops and monitors")

	assert.False(t, out.Degraded)
	assert.NoError(t, out.Cause)
	assert.Equal(t, []string{"laptops", "monitors"}, out.Value.MaterialsAccepted)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Raw text: laptops and monitors")
	assert.Contains(t, client.prompts[0], "Paint & Chemicals")
	assert.Equal(t, []llm.ModelTier{llm.TierLite}, client.tiers)
}

func TestEngine_Classify_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{name: "client error", client: &fakeClient{err: errors.New("quota exceeded")}},
		{name: "malformed response", client: &fakeClient{response: "not json"}},
		{name: "unknown category", client: &fakeClient{response: `{"materials_category": "Furniture", "materials_accepted": ["sofas"]}`}},
		{name: "missing fields", client: &fakeClient{response: `{}`}},
	}

	text := "Accepts batteries and cell phones"
	want := NewKeywordClassifier().Classify(text)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.client, unlimited(), zaptest.NewLogger(t))
			out := e.Classify(context.Background(), text)

			assert.True(t, out.Degraded)
			assert.Error(t, out.Cause)
			assert.Equal(t, want, out.Value)
			assert.True(t, out.Value.Valid())
		})
	}
}

func TestEngine_Classify_NilClient(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	out := e.Classify(context.Background(), "printers")

	assert.True(t, out.Degraded)
	assert.ErrorIs(t, out.Cause, ErrClassifierDisabled)
	assert.Equal(t, []string{"printers", "fax machines"}, out.Value.MaterialsAccepted)
}

func TestEngine_Classify_CancelledContext(t *testing.T) {
	client := &fakeClient{response: `{"materials_category": "Electronics", "materials_accepted": ["laptops"]}`}
	e := NewEngine(client, DefaultOptions(), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := e.Classify(ctx, "laptops")

	assert.True(t, out.Degraded)
	assert.ErrorIs(t, out.Cause, context.Canceled)
	assert.Empty(t, client.prompts)
	assert.True(t, out.Value.Valid())
}

func TestNewEngine_RateLimit(t *testing.T) {
	e := NewEngine(nil, &Options{RequestsPerMinute: 60}, nil)
	assert.Equal(t, rate.Every(time.Second), e.limiter.Limit())
	assert.Equal(t, 1, e.limiter.Burst())
	assert.Equal(t, llm.TierLite, e.tier)

	e = NewEngine(nil, unlimited(), nil)
	assert.Equal(t, rate.Inf, e.limiter.Limit())

	e = NewEngine(nil, nil, nil)
	assert.Equal(t, rate.Every(4*time.Second), e.limiter.Limit())
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("old laptops")
	assert.Contains(t, prompt, "Raw text: old laptops")
	for _, c := range types.Categories() {
		assert.Contains(t, prompt, string(c))
	}
	assert.NotContains(t, prompt, "{{.")
}
