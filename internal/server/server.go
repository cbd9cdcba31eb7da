// Package server exposes the lending library over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg Config, service *library.Service, logger *zap.Logger) error {
	if service == nil {
		return fmt.Errorf("library service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := &httpHandler{
		logger:  logger,
		service: service,
	}
	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("library api listening", zap.String("addr", cfg.ListenAddr), zap.Bool("auth", cfg.AuthEnabled()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", authorizationField},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	if cfg.AuthEnabled() {
		api.Use(bearerGuard([]byte(cfg.JWTSigningKey), cfg.JWTIssuer))
	}

	api.POST("/library", handler.handleCreateLibrary)
	api.GET("/search", handler.handleSearch)

	api.GET("/books", handler.handleListBooks)
	api.POST("/books", handler.handleAddBook)
	api.GET("/books/:title", handler.handleGetBook)
	api.DELETE("/books/:title", handler.handleRemoveBook)
	api.POST("/books/:title/editions", handler.handleAddEdition)
	api.DELETE("/books/:title/editions/:edition", handler.handleRemoveEdition)

	api.GET("/members", handler.handleListMembers)
	api.POST("/members", handler.handleAddMember)
	api.GET("/members/:name", handler.handleGetMember)
	api.DELETE("/members/:name", handler.handleRemoveMember)
	api.POST("/members/:name/deposits", handler.handleDeposit)
	api.POST("/members/:name/loans", handler.handleBorrow)
	api.GET("/members/:name/loans/:title", handler.handleQuote)
	api.DELETE("/members/:name/loans/:title", handler.handleReturn)

	return router
}
