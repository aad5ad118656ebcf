// Package bootstrap wires configuration, infrastructure, and use cases into
// a runnable application for both the api and the worker.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mverdier/admission-verifier/internal/config"
	"github.com/mverdier/admission-verifier/internal/core/ports"
	"github.com/mverdier/admission-verifier/internal/core/usecase"
	"github.com/mverdier/admission-verifier/internal/infrastructure/normalizer/spreadsheet"
	"github.com/mverdier/admission-verifier/internal/infrastructure/normalizer/transcript"
	"github.com/mverdier/admission-verifier/internal/infrastructure/queue/nats"
	"github.com/mverdier/admission-verifier/internal/infrastructure/repository/postgres"
	"github.com/mverdier/admission-verifier/internal/infrastructure/resilience"
	"github.com/mverdier/admission-verifier/internal/infrastructure/storage/localfs"
	"github.com/mverdier/admission-verifier/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    ports.MessageQueue
	Files    ports.FileRepository
	Mappings ports.MappingRepository

	UploadUC     ports.FileIngestor
	AdmissionUC  ports.AdmissionNormalizer
	TranscriptUC ports.TranscriptNormalizer
	RecordsUC    ports.RecordIndexer
	ReconcileUC  ports.Reconciler
	ProcessUC    ports.FileProcessor

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	files := postgres.NewFileRepository(db)
	candidates := postgres.NewCandidateRepository(db)
	students := postgres.NewStudentRepository(db)
	matches := postgres.NewMatchRepository(db)
	mappings := postgres.NewMappingRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	parser := spreadsheet.NewParser()
	registry := transcript.NewRegistry(
		transcript.NewUniParisPlugin(),
		transcript.NewUniLyonPlugin(),
	)

	matcher := usecase.NewMatcher(usecase.MatcherConfig{
		NameWeight: cfg.MatchNameWeight,
		DateWeight: cfg.MatchDateWeight,
		MinScore:   cfg.MatchMinScore,
	})

	uploadUC := usecase.NewUploadFileUseCase(files, storage, queue)
	admissionUC := usecase.NewNormalizeAdmissionUseCase(files, storage, parser, candidates)
	transcriptUC := usecase.NewNormalizeTranscriptUseCase(files, storage, registry, students)
	recordsUC := usecase.NewRecordsUseCase(files, candidates, students)
	reconcileUC := usecase.NewReconcileUseCase(files, candidates, students, matches, mappings, recordsUC, matcher)
	processUC := usecase.NewProcessFileUseCase(files, admissionUC, transcriptUC)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:    queue,
		Files:    files,
		Mappings: mappings,

		UploadUC:     uploadUC,
		AdmissionUC:  admissionUC,
		TranscriptUC: transcriptUC,
		RecordsUC:    recordsUC,
		ReconcileUC:  reconcileUC,
		ProcessUC:    processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
