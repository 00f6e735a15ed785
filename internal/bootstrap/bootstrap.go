package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazemfarouk/meddir-assistant/internal/config"
	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
	"github.com/hazemfarouk/meddir-assistant/internal/core/usecase"
	"github.com/hazemfarouk/meddir-assistant/internal/infrastructure/lexical/bleve"
	"github.com/hazemfarouk/meddir-assistant/internal/infrastructure/llm/ollama"
	natsq "github.com/hazemfarouk/meddir-assistant/internal/infrastructure/queue/nats"
	"github.com/hazemfarouk/meddir-assistant/internal/infrastructure/repository/postgres"
	"github.com/hazemfarouk/meddir-assistant/internal/infrastructure/resilience"
	"github.com/hazemfarouk/meddir-assistant/internal/infrastructure/vector/qdrant"
)

// App wires the full dependency graph for both processes. The api uses the
// answer/submit/read side; the worker uses Queue and ProcessUC.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     *natsq.Queue
	Questions ports.QuestionStore

	AnswerUC  ports.QuestionAnswerer
	SubmitUC  ports.QuestionSubmitter
	ProcessUC ports.QuestionProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	directory := postgres.NewDirectoryRepository(db)
	schedules := postgres.NewScheduleRepository(db)
	questions := postgres.NewQuestionRepository(db)

	executorCfg := resilience.DefaultConfig()
	executorCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	executorCfg.RetryInitialBackoff = cfg.RetryInitialBackoff
	executorCfg.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	executor := resilience.NewExecutor(executorCfg, logger)

	queue, err := natsq.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsq.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.OracleTimeout, executor)
	classifier := ollama.NewRouter(ollamaClient, logger)
	embedder := ollama.NewEmbedder(ollamaClient)
	extractor := ollama.NewExtractor(ollamaClient)
	validator := ollama.NewValidator(ollamaClient, logger)
	generator := ollama.NewGenerator(ollamaClient)

	denseIndex := qdrant.New(cfg.QdrantURL)

	collections := collectionsByKind(cfg)
	lexicalIndex, err := bleve.Open(cfg.LexicalIndexPath, collectionNames(collections))
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("open lexical index: %w", err)
	}

	search := usecase.NewHybridSearchEngine(
		embedder,
		denseIndex,
		lexicalIndex,
		lexicalFields(collections),
		cfg.DenseSearchTimeout,
		cfg.LexicalSearchTimeout,
		logger,
	)
	availability := usecase.NewAvailabilityEngine(schedules, cfg.HorizonWeeks, nil, logger)
	resolver := usecase.NewRelationshipResolver(directory, availability, logger)
	enricher := usecase.NewEnrichmentLoop(extractor, validator, logger)

	answerUC := usecase.NewAnswerQuestionUseCase(
		classifier,
		search,
		resolver,
		enricher,
		generator,
		collections,
		cfg.SearchLimit,
		cfg.ScoreThreshold,
		logger,
	)
	submitUC := usecase.NewSubmitQuestionUseCase(questions, queue)
	processUC := usecase.NewProcessQuestionUseCase(questions, answerUC)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		Questions: questions,

		AnswerUC:  answerUC,
		SubmitUC:  submitUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = lexicalIndex.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func collectionsByKind(cfg config.Config) map[domain.EntityKind]string {
	byName := cfg.Collections()
	collections := make(map[domain.EntityKind]string, len(byName))
	for kind, name := range byName {
		collections[domain.EntityKind(kind)] = name
	}
	return collections
}

func collectionNames(collections map[domain.EntityKind]string) []string {
	names := make([]string, 0, len(collections))
	for _, name := range collections {
		names = append(names, name)
	}
	return names
}

// lexicalFields sets the per-collection keyword fields and boosts. Names are
// weighted over free text in every collection.
func lexicalFields(collections map[domain.EntityKind]string) map[string][]string {
	fields := make(map[string][]string, len(collections))
	for _, name := range collections {
		fields[name] = []string{"name^3", "text"}
	}
	return fields
}
