package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/hanzi-api/internal/config"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/generation"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// contentGenerator is the subset of genai.Models used by the generator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.Generator on the Gemini API.
type GeminiGenerator struct {
	logger    *slog.Logger
	config    config.LLMConfig
	models    contentGenerator
	templates *template.Template

	// after is time.After, replaceable in tests.
	after func(time.Duration) <-chan time.Time
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator backed by a genai client.
// The API key and model name must be set.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %w", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, cfg, client.Models)
}

func newGenerator(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if models == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", generation.ErrInvalidConfig)
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:    logger.With(slog.String("component", "gemini_generator")),
		config:    cfg,
		models:    models,
		templates: templates,
		after:     time.After,
	}, nil
}

// EnrichWord implements generation.Enricher.
func (g *GeminiGenerator) EnrichWord(ctx context.Context, character string) (*domain.Enrichment, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	character = strings.TrimSpace(character)
	if character == "" {
		return nil, generation.ErrEmptyInput
	}

	prompt, err := renderPrompt(g.templates, enrichTemplate, enrichPromptData{Character: character})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	text, err := g.callWithRetry(ctx, genai.Text(prompt), enrichSchema())
	if err != nil {
		log.Error("word enrichment failed",
			slog.String("error", err.Error()),
			slog.String("character", character))
		return nil, err
	}

	enrichment, err := parseEnrichment(text)
	if err != nil {
		log.Error("invalid enrichment response",
			slog.String("error", err.Error()),
			slog.String("character", character))
		return nil, err
	}

	log.Debug("word enriched", slog.String("character", character))
	return enrichment, nil
}

// GenerateDialogue implements generation.DialogueGenerator.
func (g *GeminiGenerator) GenerateDialogue(
	ctx context.Context,
	words []string,
	scenario string,
) ([]domain.DialogueLine, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	cleaned := cleanWords(words)
	if len(cleaned) == 0 {
		return nil, generation.ErrEmptyInput
	}

	prompt, err := renderPrompt(g.templates, dialogueTemplate, dialoguePromptData{
		Words:    cleaned,
		Scenario: strings.TrimSpace(scenario),
		MinLines: minDialogueLines,
		MaxLines: maxDialogueLines,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	text, err := g.callWithRetry(ctx, genai.Text(prompt), dialogueSchema())
	if err != nil {
		log.Error("dialogue generation failed",
			slog.String("error", err.Error()),
			slog.Int("word_count", len(cleaned)))
		return nil, err
	}

	lines, err := parseDialogue(text)
	if err != nil {
		log.Error("invalid dialogue response", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("dialogue generated",
		slog.Int("word_count", len(cleaned)),
		slog.Int("line_count", len(lines)))
	return lines, nil
}

// RespondReflex implements generation.ReflexResponder. The rendered prompt is
// sent as the first user turn, followed by the conversation history.
func (g *GeminiGenerator) RespondReflex(
	ctx context.Context,
	history []domain.ChatMessage,
	words []string,
	scenario string,
) (*domain.ReflexReply, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	cleaned := cleanWords(words)
	if len(cleaned) == 0 {
		return nil, generation.ErrEmptyInput
	}
	if err := domain.ValidateChatHistory(history); err != nil {
		return nil, err
	}

	prompt, err := renderPrompt(g.templates, reflexTemplate, reflexPromptData{
		Words:    cleaned,
		Scenario: strings.TrimSpace(scenario),
		Opening:  len(history) == 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(strings.TrimSpace(msg.Content), genai.Role(msg.Role)))
	}

	text, err := g.callWithRetry(ctx, contents, reflexSchema())
	if err != nil {
		log.Error("reflex response failed",
			slog.String("error", err.Error()),
			slog.Int("turns", len(history)))
		return nil, err
	}

	reply, err := parseReflex(text, len(history) > 0)
	if err != nil {
		log.Error("invalid reflex response", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("reflex reply generated", slog.Int("turns", len(history)))
	return reply, nil
}

// cleanWords trims words and drops blanks.
func cleanWords(words []string) []string {
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			cleaned = append(cleaned, w)
		}
	}
	return cleaned
}

// callWithRetry sends contents to the model and returns the response text.
// Transient failures are retried up to MaxRetries times with exponential
// backoff and jitter: baseDelay * 2^attempt * [0.5, 1.0).
func (g *GeminiGenerator) callWithRetry(
	ctx context.Context,
	contents []*genai.Content,
	schema *genai.Schema,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 0 {
		baseDelaySeconds = defaultRetryDelaySeconds
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	for attempt := 0; ; attempt++ {
		text, err := g.generateOnce(ctx, contents, genConfig)
		if err == nil {
			log.Debug("gemini call succeeded", slog.Int("attempt", attempt+1))
			return text, nil
		}

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if !isTransient(err) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctxErr)
			}
			return "", fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
		}

		if attempt >= maxRetries {
			log.Warn("maximum retry attempts reached",
				slog.Int("max_retries", maxRetries),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w",
				generation.ErrTransientFailure, maxRetries, err)
		}

		delay := g.backoff(baseDelaySeconds, attempt)
		log.Info("retrying gemini call",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-g.after(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff runs on concurrent requests and must only use the package-level
// rand source.
func (g *GeminiGenerator) backoff(baseDelaySeconds, attempt int) time.Duration {
	backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoffSeconds * jitter * float64(time.Second))
}

// generateOnce makes a single API call and extracts the response text.
func (g *GeminiGenerator) generateOnce(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.config.ModelName, contents, genConfig)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// parseEnrichment decodes and checks an enrichment response.
// Pinyin and meaning must be present; the remaining fields may be blank.
func parseEnrichment(text string) (*domain.Enrichment, error) {
	var resp enrichResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %w", generation.ErrInvalidResponse, err)
	}

	resp = enrichResponse{
		Pinyin:             strings.TrimSpace(resp.Pinyin),
		Meaning:            strings.TrimSpace(resp.Meaning),
		WordType:           strings.TrimSpace(resp.WordType),
		GrammarNote:        strings.TrimSpace(resp.GrammarNote),
		RadicalAnalysis:    strings.TrimSpace(resp.RadicalAnalysis),
		Example:            strings.TrimSpace(resp.Example),
		ExamplePinyin:      strings.TrimSpace(resp.ExamplePinyin),
		ExampleTranslation: strings.TrimSpace(resp.ExampleTranslation),
	}

	if resp.Pinyin == "" {
		return nil, fmt.Errorf("%w: pinyin is missing", generation.ErrInvalidResponse)
	}
	if resp.Meaning == "" {
		return nil, fmt.Errorf("%w: meaning is missing", generation.ErrInvalidResponse)
	}

	return resp.toDomain(), nil
}

// parseDialogue decodes and checks a dialogue response.
func parseDialogue(text string) ([]domain.DialogueLine, error) {
	var resp dialogueResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %w", generation.ErrInvalidResponse, err)
	}
	if len(resp.Lines) == 0 {
		return nil, fmt.Errorf("%w: dialogue has no lines", generation.ErrInvalidResponse)
	}

	lines := make([]domain.DialogueLine, 0, len(resp.Lines))
	for i, l := range resp.Lines {
		speaker := strings.ToUpper(strings.TrimSpace(l.Speaker))
		if speaker != "A" && speaker != "B" {
			return nil, fmt.Errorf("%w: line %d has unknown speaker %q", generation.ErrInvalidResponse, i+1, l.Speaker)
		}
		chinese := strings.TrimSpace(l.Chinese)
		if chinese == "" {
			return nil, fmt.Errorf("%w: line %d has no text", generation.ErrInvalidResponse, i+1)
		}
		lines = append(lines, domain.DialogueLine{
			Speaker:     speaker,
			Chinese:     chinese,
			Pinyin:      strings.TrimSpace(l.Pinyin),
			Translation: strings.TrimSpace(l.Translation),
		})
	}

	return lines, nil
}

// parseReflex decodes and checks a reflex response. The evaluation is
// required when the learner has spoken and dropped for an opening line.
func parseReflex(text string, wantEvaluation bool) (*domain.ReflexReply, error) {
	var resp reflexResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %w", generation.ErrInvalidResponse, err)
	}

	reply := &domain.ReflexReply{Next: resp.NextMessage.toDomain()}
	if reply.Next.Chinese == "" {
		return nil, fmt.Errorf("%w: next message is missing", generation.ErrInvalidResponse)
	}

	if !wantEvaluation {
		return reply, nil
	}
	if resp.Evaluation == nil {
		return nil, fmt.Errorf("%w: evaluation is missing", generation.ErrInvalidResponse)
	}

	evaluation, err := resp.Evaluation.toDomain()
	if err != nil {
		return nil, err
	}
	reply.Evaluation = evaluation
	return reply, nil
}
