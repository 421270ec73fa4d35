package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/jjpaste/jjbin/config"
	"github.com/jjpaste/jjbin/db"
	"github.com/jjpaste/jjbin/handlers"
	"github.com/jjpaste/jjbin/highlight"
	applog "github.com/jjpaste/jjbin/logger"
	mw "github.com/jjpaste/jjbin/middleware"
	"github.com/jjpaste/jjbin/store"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	users := store.NewUsers(bdb)
	pastes := store.NewPastes(bdb)
	sessions := mw.NewSessions(cfg.SessionKey(), !cfg.Debug)
	h := handlers.New(users, pastes, sessions, highlight.Plain{}, cfg.SecretKey, cfg.BaseURL, cfg.PastesPerPage)

	e := echo.New()
	e.Renderer = handlers.NewRenderer()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Web surface. Identity comes from the session cookie only.
	web := e.Group("", sessions.WebIdentity(users))
	web.GET("/", h.Index)
	web.GET("/language/:language", h.LanguageIndex)
	web.GET("/login", h.LoginPage)
	web.POST("/login", h.LoginSubmit)
	web.GET("/logout", h.Logout)
	web.GET("/register", h.RegisterPage)
	web.POST("/register", h.RegisterSubmit)
	web.GET("/create", h.CreatePage)
	web.POST("/create", h.CreateSubmit)
	web.GET("/paste/:unique_id", h.ViewPaste)
	web.GET("/paste/:unique_id/raw", h.RawPaste)
	web.GET("/paste/:unique_id/edit", h.EditPage)
	web.POST("/paste/:unique_id/edit", h.EditSubmit)
	web.POST("/paste/:unique_id/delete", h.DeleteSubmit)
	web.GET("/user/:username", h.Profile)
	e.GET("/static/style.css", handlers.Stylesheet)

	// API surface. Identity comes from bearer, basic or query-token credentials.
	api := e.Group("/api", mw.APIIdentity(users, cfg.SecretKey))
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/pastes", h.ListPastes)
	api.POST("/pastes", h.CreatePaste, mw.RequireUser())
	api.GET("/pastes/:unique_id", h.GetPaste)
	api.GET("/pastes/:unique_id/raw", h.GetPasteRaw)
	api.PUT("/pastes/:unique_id", h.UpdatePaste, mw.RequireUser())
	api.DELETE("/pastes/:unique_id", h.DeletePaste, mw.RequireUser())

	api.GET("/users/me", h.Me, mw.RequireUser())
	api.GET("/users/me/pastes", h.MyPastes, mw.RequireUser())
	api.GET("/users/:username", h.UserProfile)
	api.GET("/users/:username/pastes", h.UserPastes)
	api.GET("/users", h.ListUsers, mw.RequireUser(), mw.RequireSuperuser())
	api.DELETE("/users/:username", h.DeleteUser, mw.RequireUser(), mw.RequireSuperuser())

	if cfg.Debug || len(cfg.TLSDomains) == 0 {
		logger.Info("starting server", zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
