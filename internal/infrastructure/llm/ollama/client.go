package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/infrastructure/resilience"
)

// Client is the shared Ollama transport. The routing, extraction, validation
// and generation oracles are thin wrappers over it, each with its own
// malformed-output fallback.
type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyOllamaError)
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": []string{text},
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	err := e.client.execute(ctx, "embed", func(ctx context.Context) error {
		return e.client.postJSON(ctx, "/api/embed", request, &response, "embed")
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}
	if len(response.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Embeddings[0], nil
}

// Router classifies a question into a pipeline route. Transport failures are
// returned to the caller; output that does not parse into the routing
// vocabulary falls back to the default route.
type Router struct {
	client *Client
	logger *slog.Logger
}

func NewRouter(client *Client, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{client: client, logger: logger}
}

func (r *Router) Classify(ctx context.Context, question string) (domain.RouteDecision, error) {
	raw, err := r.client.generateJSON(ctx, "classify_query", buildRoutePrompt(question))
	if err != nil {
		return domain.RouteDecision{}, wrapTemporaryIfNeeded("classify_query", err)
	}

	var decoded domain.RouteDecision
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &decoded); err != nil {
		r.logger.Warn("route_oracle_malformed", "error", err)
		return domain.DefaultRoute(), nil
	}
	return normalizeRoute(decoded, r.logger), nil
}

func normalizeRoute(decision domain.RouteDecision, logger *slog.Logger) domain.RouteDecision {
	switch decision.Operation {
	case domain.OpDirectStructured, domain.OpSemantic, domain.OpCombined:
	default:
		logger.Warn("route_oracle_unknown_operation", "operation", string(decision.Operation))
		return domain.DefaultRoute()
	}
	switch decision.Entity {
	case domain.EntityHospitals, domain.EntityDoctors, domain.EntitySpecialties,
		domain.EntityAreas, domain.EntityCities, domain.EntityRelationships:
	default:
		logger.Warn("route_oracle_unknown_entity", "entity", string(decision.Entity))
		decision.Entity = domain.EntityHospitals
	}
	return decision
}

// Extractor proposes entity candidates from retrieval snippets.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

func (e *Extractor) Extract(ctx context.Context, question string, snippets []string) ([]domain.EntityCandidate, error) {
	raw, err := e.client.generateJSON(ctx, "extract_entities", buildExtractionPrompt(question, snippets))
	if err != nil {
		return nil, wrapTemporaryIfNeeded("extract_entities", err)
	}

	var decoded struct {
		Candidates []domain.EntityCandidate `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &decoded); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedOracle, "extract_entities", err)
	}

	out := make([]domain.EntityCandidate, 0, len(decoded.Candidates))
	for _, candidate := range decoded.Candidates {
		if strings.TrimSpace(candidate.Value) == "" {
			continue
		}
		out = append(out, candidate)
	}
	return out, nil
}

// Validator judges whether one extracted candidate answers the question.
// Output that does not parse counts as a non-match.
type Validator struct {
	client *Client
	logger *slog.Logger
}

func NewValidator(client *Client, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{client: client, logger: logger}
}

func (v *Validator) Validate(ctx context.Context, question string, candidate domain.EntityCandidate) (bool, error) {
	raw, err := v.client.generateJSON(ctx, "validate_match", buildValidationPrompt(question, candidate))
	if err != nil {
		return false, wrapTemporaryIfNeeded("validate_match", err)
	}

	var decoded struct {
		Match bool `json:"match"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &decoded); err != nil {
		v.logger.Warn("validation_oracle_malformed", "error", err)
		return false, nil
	}
	return decoded.Match, nil
}

// Generator produces the final grounded answer text.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question, contextBlock, language string) (string, error) {
	text, err := g.client.generateText(ctx, "generate_answer", buildAnswerPrompt(question, contextBlock, language))
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate_answer", err)
	}
	return text, nil
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, operation, reqBody)
}

func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}
	return c.generate(ctx, operation, reqBody)
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	err := c.execute(ctx, operation, func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, operation)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
