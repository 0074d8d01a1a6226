package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizforge/mockexam-backend/internal/config"
	"github.com/quizforge/mockexam-backend/internal/engine"
	"github.com/quizforge/mockexam-backend/internal/handler"
	"github.com/quizforge/mockexam-backend/internal/logger"
	"github.com/quizforge/mockexam-backend/internal/questionset"
	"github.com/quizforge/mockexam-backend/internal/router"
	"github.com/quizforge/mockexam-backend/internal/store"
	"github.com/quizforge/mockexam-backend/internal/validator"
	ws "github.com/quizforge/mockexam-backend/internal/websocket"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreBackend).
		Msg("Starting mock-exam backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Session Store ─────────────────────────────────────────────────
	sessionStore, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}

	// ─── Ancillary Store (history + imported sets) ─────────────────────
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data dir")
	}
	history, err := store.OpenHistory(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history store")
	}
	defer history.Close()

	// ─── Question Sets ─────────────────────────────────────────────────
	sets, err := questionset.NewLoader(history)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question sets")
	}

	// ─── Event Hub ─────────────────────────────────────────────────────
	hub := ws.NewHub(log)

	// ─── Session Engine ────────────────────────────────────────────────
	eng := engine.New(sessionStore, engine.Config{
		AutosaveInterval: cfg.AutosaveInterval,
		SessionWarnings:  cfg.SessionWarnings,
		QuestionWarnings: cfg.QuestionWarnings,
	}, log, engine.Hooks{
		OnQuestionChanged: func(index int) {
			hub.Broadcast(ws.QuestionChangedEvent{Event: ws.EventQuestionChanged, Index: index})
		},
		OnTick: func(remaining int) {
			hub.Broadcast(ws.TickEvent{Event: ws.EventTick, RemainingSeconds: remaining})
		},
		OnTimeWarning: func(scope engine.WarningScope, threshold int) {
			hub.Broadcast(ws.TimeWarningEvent{
				Event:            ws.EventTimeWarning,
				Scope:            string(scope),
				ThresholdSeconds: threshold,
			})
		},
		OnSessionCompleted: func(f engine.Finalized) {
			if err := history.AppendAttempt(&store.AttemptRecord{
				ID:              f.AttemptID,
				SetID:           f.SetID,
				SetTitle:        f.SetTitle,
				StartedAt:       f.StartedAt,
				EndedAt:         f.EndedAt,
				DurationSeconds: f.DurationSeconds,
				Score:           f.Results.Score,
				Total:           f.Results.Total,
				Results:         f.Results,
			}); err != nil {
				log.Error().Err(err).Str("attempt_id", f.AttemptID).Msg("Record attempt history failed")
			}
			hub.Broadcast(ws.SessionCompletedEvent{
				Event:     ws.EventSessionCompleted,
				AttemptID: f.AttemptID,
				Score:     f.Results.Score,
				Total:     f.Results.Total,
			})
		},
		OnPersistenceFailed: func() {
			hub.Broadcast(ws.SaveDegradedEvent{Event: ws.EventSaveDegraded})
		},
	})

	// ─── Resume Persisted Session ──────────────────────────────────────
	resumeSession(eng, sessionStore, sets, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session:     handler.NewSessionHandler(eng, sets, log),
		QuestionSet: handler.NewQuestionSetHandler(sets, log),
		History:     handler.NewHistoryHandler(history, log),
		WS:          handler.NewWSHandler(hub, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Flush in-flight question time so a restart resumes accurately.
	eng.Shutdown()

	log.Info().Msg("Shutdown complete")
}

// newSessionStore selects the blob store backend from config.
func newSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.SessionStore, error) {
	if cfg.StoreBackend == config.StoreBackendRedis {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(ctx, redis.NewClient(opt), log)
	}
	return store.NewFileStore(cfg.DataDir, log)
}

// resumeSession restores a persisted attempt, if one exists. A finished blob
// is adopted read-only; an expired one is finalized immediately; anything
// unreadable is discarded.
func resumeSession(eng *engine.Engine, st store.SessionStore, sets *questionset.Loader, log zerolog.Logger) {
	state := st.Load()
	if state == nil {
		return
	}

	set, err := sets.Get(state.SetID)
	if err != nil {
		log.Warn().Err(err).Str("set_id", state.SetID).Msg("Persisted session references unknown set, discarding")
		st.Clear()
		return
	}

	ordered, err := questionset.Reorder(set, state.QuestionOrder)
	if err != nil {
		log.Warn().Err(err).Msg("Persisted question order unusable, discarding session")
		st.Clear()
		return
	}

	if err := eng.Resume(ordered, state); err != nil {
		log.Warn().Err(err).Msg("Resume persisted session failed, discarding")
		st.Clear()
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
