// Package server assembles the application and runs the HTTP listener.
package server

import (
	"context"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dietpal/backend/config"
	"github.com/dietpal/backend/internal/api"
	"github.com/dietpal/backend/internal/llm"
	"github.com/dietpal/backend/internal/store"
	"github.com/dietpal/backend/internal/userstore"
	"github.com/dietpal/backend/internal/webctx"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New wires the storage backend, providers and handlers into a server.
func New(cfg *config.Config) *Server {
	var kv store.KV
	if cfg.RedisConfigured() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		kv = store.NewRedisKV(client)
		log.Printf("Using Redis storage at %s", cfg.RedisAddr())
	} else {
		kv = store.NewFileKV(cfg.DataDir)
		log.Printf("Using file storage under %s", cfg.DataDir)
	}
	contextStore := store.NewContextStore(kv)

	catalog := llm.NewCatalog(cfg.HFModelsURL, cfg.HFToken)
	hf := llm.NewHuggingFace(cfg.HFToken, cfg.HFAPIURL, cfg.HFModel, cfg.HFModels, catalog)
	github := llm.NewGitHub(cfg.GitHubAPIKey, cfg.GitHubAPIURL, cfg.GitHubModel, cfg.GitHubModels)
	generator := llm.NewRouter(cfg.AIProvider, hf, github)

	users := userstore.New(filepath.Join(cfg.DataDir, "users"))

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.SetupAPI(router, api.Dependencies{
		Config:    cfg,
		Generator: generator,
		Store:     contextStore,
		Web:       webctx.NewClient(),
		Users:     users,
	})

	return &Server{cfg: cfg, router: router}
}

// Start runs the HTTP listener until it fails or the server is shut down.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Backend listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
