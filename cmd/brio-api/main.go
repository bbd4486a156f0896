package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	httpadapter "github.com/tomasoliva/brio-agent/internal/adapters/http"
	"github.com/tomasoliva/brio-agent/internal/adapters/llm"
	firestorestore "github.com/tomasoliva/brio-agent/internal/adapters/storage/firestore"
	memstore "github.com/tomasoliva/brio-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/tomasoliva/brio-agent/internal/adapters/storage/sqlite"
	"github.com/tomasoliva/brio-agent/internal/app/assistant"
	"github.com/tomasoliva/brio-agent/internal/config"
	"github.com/tomasoliva/brio-agent/internal/domain"
	"github.com/tomasoliva/brio-agent/internal/observability"
)

func main() {
	ctx := context.Background()
	log := observability.Logger()
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// LLM: Gemini or mock (useful for dev)
	var llmClient domain.LLMClient
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Info("using Gemini LLM client", "model", cfg.ModelName)
		llmClient, err = llm.NewGeminiClient(ctx)
		if err != nil {
			log.Error("error initializing Gemini client", "error", err)
			os.Exit(1)
		}
	}

	// Storage: memory, sqlite or firestore
	var (
		tasks    domain.TaskStore
		notes    domain.NoteStore
		goals    domain.GoalStore
		events   domain.EventStore
		profiles domain.ProfileStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Error("error initializing Firestore store", "error", err)
			os.Exit(1)
		}
		// one store, five interfaces
		tasks, notes, goals, events, profiles = fsStore, fsStore, fsStore, fsStore, fsStore

	case "sqlite":
		log.Info("using SQLite storage", "path", cfg.DBPath)
		dbStore, err := sqlitestore.NewStore(cfg.DBPath)
		if err != nil {
			log.Error("error initializing SQLite store", "error", err)
			os.Exit(1)
		}
		defer dbStore.Close()
		tasks, notes, goals, events, profiles = dbStore, dbStore, dbStore, dbStore, dbStore

	default:
		log.Info("using in-memory storage")
		tasks = memstore.NewTaskStore()
		notes = memstore.NewNoteStore()
		goals = memstore.NewGoalStore()
		events = memstore.NewEventStore()
		profiles = memstore.NewProfileStore()
	}

	svc := assistant.NewService(llmClient, tasks, notes, goals, events, profiles)
	handler := httpadapter.NewServer(svc, cfg.APITokens)

	addr := ":" + cfg.Port
	log.Info("brio api listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
