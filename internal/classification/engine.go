package classification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/recycling-locator/internal/fallback"
	"github.com/jonathan/recycling-locator/internal/llm"
	"github.com/jonathan/recycling-locator/internal/prompts"
	"github.com/jonathan/recycling-locator/internal/types"
)

// DefaultRequestsPerMinute keeps remote calls under the free-tier quota.
const DefaultRequestsPerMinute = 15

// Outcome is a classification plus whether it came from the keyword fallback.
type Outcome = fallback.Outcome[types.Classification]

// Options configures the remote path.
type Options struct {
	Tier              llm.ModelTier
	RequestsPerMinute int // <= 0 disables rate limiting
}

// DefaultOptions returns the production settings.
func DefaultOptions() *Options {
	return &Options{Tier: llm.TierLite, RequestsPerMinute: DefaultRequestsPerMinute}
}

// Engine classifies listing text. A nil client means every call uses the fallback.
type Engine struct {
	client   llm.Client
	tier     llm.ModelTier
	limiter  *rate.Limiter
	keywords *KeywordClassifier
	logger   *zap.Logger
}

// NewEngine creates an Engine. A nil opts uses DefaultOptions.
func NewEngine(client llm.Client, opts *Options, logger *zap.Logger) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}

	return &Engine{
		client:   client,
		tier:     opts.Tier,
		limiter:  rate.NewLimiter(limit, 1),
		keywords: NewKeywordClassifier(),
		logger:   logger,
	}
}

// Classify returns a valid classification for rawText. Remote errors,
// malformed responses and a disabled client all resolve to the keyword fallback.
func (e *Engine) Classify(ctx context.Context, rawText string) Outcome {
	out := fallback.Resolve(
		func() (types.Classification, error) { return e.classifyRemote(ctx, rawText) },
		func() types.Classification { return e.keywords.Classify(rawText) },
	)
	if out.Degraded && !errors.Is(out.Cause, ErrClassifierDisabled) {
		e.logger.Warn("LLM classification failed, using keyword fallback", zap.Error(out.Cause))
	}
	return out
}

func (e *Engine) classifyRemote(ctx context.Context, rawText string) (types.Classification, error) {
	if e.client == nil {
		return types.Classification{}, ErrClassifierDisabled
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return types.Classification{}, &ResponseError{Message: "rate limiter wait aborted", Cause: err}
	}

	responseText, err := e.client.GenerateContent(ctx, BuildPrompt(rawText), e.tier)
	if err != nil {
		return types.Classification{}, &ResponseError{Message: "failed to generate content from LLM", Cause: err}
	}
	return ParseResponse(responseText)
}

// BuildPrompt embeds rawText into the classification instruction template.
func BuildPrompt(rawText string) string {
	names := make([]string, 0, len(types.Categories()))
	for _, c := range types.Categories() {
		names = append(names, string(c))
	}
	template := prompts.MustGet("classification.json", "classify-materials")
	return prompts.Format(template, map[string]string{
		"Categories": strings.Join(names, ", "),
		"Text":       rawText,
	})
}

type rawResponse struct {
	MaterialsCategory *string   `json:"materials_category"`
	MaterialsAccepted *[]string `json:"materials_accepted"`
}

// ParseResponse decodes a model response into a normalized classification.
// Code fences and surrounding prose are tolerated; a missing field, a
// category outside the taxonomy or an empty materials list is an error.
func ParseResponse(responseText string) (types.Classification, error) {
	body := llm.CleanJSONBlock(responseText)
	if !strings.HasPrefix(body, "{") {
		body = llm.ExtractJSONObject(body)
	}
	if body == "" {
		return types.Classification{}, &ResponseError{Message: "no JSON object in response"}
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return types.Classification{}, &ResponseError{Message: "failed to unmarshal classification JSON", Cause: err}
	}
	if raw.MaterialsCategory == nil {
		return types.Classification{}, &ResponseError{Message: "missing materials_category"}
	}
	if raw.MaterialsAccepted == nil {
		return types.Classification{}, &ResponseError{Message: "missing materials_accepted"}
	}

	category, ok := types.ParseMaterialsCategory(*raw.MaterialsCategory)
	if !ok {
		return types.Classification{}, &ResponseError{Message: "unknown materials_category " + *raw.MaterialsCategory}
	}
	accepted := types.DedupeMaterials(*raw.MaterialsAccepted)
	if len(accepted) == 0 {
		return types.Classification{}, &ResponseError{Message: "empty materials_accepted"}
	}

	return types.Classification{MaterialsCategory: category, MaterialsAccepted: accepted}, nil
}
