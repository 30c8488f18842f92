package orchestrator

import (
	"context"

	"github.com/novalxp/novalxp-bot/internal/config"
	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/novalxp/novalxp-bot/internal/generation"
	"github.com/novalxp/novalxp-bot/internal/intent"
	"github.com/novalxp/novalxp-bot/internal/retrieval"
	"github.com/novalxp/novalxp-bot/internal/telemetry"
)

// Answer confidence by generation path. The values are part of the API
// contract, not a model output.
const (
	confidenceStub     = 0.7
	confidencePrimary  = 0.8
	confidenceFallback = 0.75
)

// Retriever is the slice of the retrieval engine the orchestrator needs.
type Retriever interface {
	Retrieve(ctx context.Context, req retrieval.Request) ([]domain.Citation, error)
}

// Orchestrator runs the chat pipeline: intent classification, retrieval,
// grounding enforcement, model routing with a single fallback retry, and
// answer post-processing.
type Orchestrator struct {
	cfg       *config.Config
	retriever Retriever
	generator generation.Generator
	stubMode  bool
}

func New(cfg *config.Config, retriever Retriever, generator generation.Generator) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		retriever: retriever,
		generator: generator,
		stubMode:  cfg.GenerationProvider == generation.ProviderStub || cfg.GenerationProvider == "",
	}
}

// Handle processes one validated chat request end to end.
func (o *Orchestrator) Handle(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Orchestrator.Handle", telemetry.SpanAttributes{
		TenantID:  req.TenantID,
		UserID:    req.User.ID,
		Operation: "chat",
	})
	defer span.End()

	detected := intent.Classify(req.Query.Text)

	retrieveCtx, retrieveSpan := telemetry.StartSpan(ctx, "Engine.Retrieve", telemetry.SpanAttributes{
		Intent:    string(detected),
		Operation: "retrieve",
	})
	citations, err := o.retriever.Retrieve(retrieveCtx, retrieval.Request{
		QueryText:  req.Query.Text,
		IntentHint: detected.RetrievalHint(),
		Intent:     detected,
		Context:    req.Context,
		User:       req.User,
		TopK:       o.cfg.RetrievalTopK,
	})
	if err != nil {
		retrieveSpan.SetError(err)
		retrieveSpan.End()
		return domain.ChatResult{}, err
	}
	retrieveSpan.End()

	if RequiresGrounding(detected) && len(citations) < o.cfg.RetrievalMinCitations {
		return domain.ChatResult{}, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			"No retrieval context available for grounded response.", true)
	}

	answer, modelID, fallbackUsed, err := o.generate(ctx, req, detected, citations)
	if err != nil {
		return domain.ChatResult{}, err
	}

	if detected == domain.IntentCourseRecommendation {
		answer.Text = ensureRecommendationCoverage(answer.Text, citations)
	}

	return domain.ChatResult{
		Intent:       detected,
		Answer:       answer,
		Actions:      buildActions(detected, citations),
		ModelID:      modelID,
		FallbackUsed: fallbackUsed,
	}, nil
}

// generate invokes the routed model, retrying once on the fallback model
// when the request allows it.
func (o *Orchestrator) generate(ctx context.Context, req domain.ChatRequest, detected domain.Intent, citations []domain.Citation) (domain.Answer, string, bool, error) {
	modelID := o.cfg.ModelFor(detected)

	maxTokens := o.cfg.MaxTokensDefault
	if req.Options.MaxOutputTokens > 0 {
		maxTokens = req.Options.MaxOutputTokens
	}

	in := generation.Input{
		ModelID:   modelID,
		UserText:  req.Query.Text,
		Citations: citations,
		MaxTokens: maxTokens,
		Intent:    detected,
		UserRole:  req.User.Role,
	}

	primaryCtx, primarySpan := telemetry.StartSpan(ctx, "Generator.Converse", telemetry.SpanAttributes{
		Intent:    string(detected),
		ModelID:   modelID,
		Operation: "generate",
	})
	primary, err := o.generator.Converse(primaryCtx, in)
	if err == nil {
		primarySpan.End()
		confidence := confidencePrimary
		if o.stubMode {
			confidence = confidenceStub
		}
		return domain.Answer{Text: primary.Text, Confidence: confidence, Citations: citations}, modelID, false, nil
	}
	primarySpan.SetError(err)
	primarySpan.End()

	if !req.Options.AllowModelFallback {
		return domain.Answer{}, "", false, err
	}

	telemetry.AddBreadcrumb(ctx, "generation", "primary model failed, retrying on fallback model")
	in.ModelID = o.cfg.ModelFallback
	fallbackCtx, fallbackSpan := telemetry.StartSpan(ctx, "Generator.Converse", telemetry.SpanAttributes{
		Intent:    string(detected),
		ModelID:   o.cfg.ModelFallback,
		Operation: "generate_fallback",
	})
	fallback, err := o.generator.Converse(fallbackCtx, in)
	if err != nil {
		fallbackSpan.SetError(err)
		fallbackSpan.End()
		telemetry.CaptureError(ctx, err)
		return domain.Answer{}, "", false, err
	}
	fallbackSpan.End()
	return domain.Answer{Text: fallback.Text, Confidence: confidenceFallback, Citations: citations}, o.cfg.ModelFallback, true, nil
}

// RequiresGrounding reports whether an intent must carry retrieved context
// before any model is invoked.
func RequiresGrounding(detected domain.Intent) bool {
	switch detected {
	case domain.IntentCourseRecommendation,
		domain.IntentSectionExplainer,
		domain.IntentProgressCompletion,
		domain.IntentGlossaryPolicy:
		return true
	}
	return false
}
