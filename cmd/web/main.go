package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ladrillocristalpuro.ca/web/internal/cms"
	"ladrillocristalpuro.ca/web/internal/config"
	"ladrillocristalpuro.ca/web/internal/format"
	"ladrillocristalpuro.ca/web/internal/gate"
	handlersPkg "ladrillocristalpuro.ca/web/internal/handlers"
	"ladrillocristalpuro.ca/web/internal/i18n"
	"ladrillocristalpuro.ca/web/internal/intro"
	mw "ladrillocristalpuro.ca/web/internal/middleware"
	"ladrillocristalpuro.ca/web/internal/observability"
	"ladrillocristalpuro.ca/web/internal/session"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode reparses templates on every request
	devMode   bool
	tmplCache *template.Template

	siteCfg        config.Config
	logger         = zap.NewNop()
	i18nBundle     *i18n.Bundle
	sessionManager *session.Manager
	cmsClient      *cms.Client
	introData      *handlersPkg.IntroData
	analytics      handlersPkg.Analytics
	clock          = time.Now
	siteLocation   = time.UTC
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var addr string
	flag.StringVar(&addr, "addr", cfg.Addr(), "HTTP listen address")
	flag.StringVar(&cfg.TemplatesDir, "templates", cfg.TemplatesDir, "templates directory")
	flag.StringVar(&cfg.PublicDir, "public", cfg.PublicDir, "public assets directory")
	flag.StringVar(&cfg.LocalesDir, "locales", cfg.LocalesDir, "locales directory")
	flag.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "markdown content directory")
	flag.BoolVar(&cfg.Dev, "dev", cfg.Dev, "reparse templates on every request")
	flag.Parse()

	log, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := observability.SetupTracing(context.Background(), observability.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "ladrillocristalpuro-web",
		Environment: cfg.Environment,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("tracing setup failed", zap.Error(err))
	}

	if err := setup(cfg, log); err != nil {
		log.Fatal("setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("web listening", zap.String("addr", addr), zap.Bool("dev", devMode), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("flush traces", zap.Error(err))
	}
}

// setup wires package-level dependencies from configuration.
func setup(cfg config.Config, log *zap.Logger) error {
	siteCfg = cfg
	logger = log
	templatesDir = cfg.TemplatesDir
	publicDir = cfg.PublicDir
	devMode = cfg.Dev
	siteLocation = cfg.Location()

	bundle, err := i18n.Load(cfg.LocalesDir, cfg.DefaultLanguage, cfg.Languages)
	if err != nil {
		return fmt.Errorf("load i18n: %w", err)
	}
	i18nBundle = bundle

	hashKey, blockKey, ephemeral, err := cfg.CookieKeys()
	if err != nil {
		return fmt.Errorf("cookie keys: %w", err)
	}
	if ephemeral {
		log.Warn("using ephemeral cookie signing key; gate cookies will not survive restarts")
	}
	sessionManager, err = session.NewManager(session.Config{
		HashKey:   hashKey,
		BlockKey:  blockKey,
		Domain:    cfg.Cookies.Domain,
		Secure:    cfg.IsProd(),
		AgeMaxAge: cfg.Cookies.AgeTTL,
	})
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	cmsClient = cms.NewClient(cfg.CMS.BaseURL,
		cms.WithContentDir(cfg.ContentDir),
		cms.WithCacheTTL(cfg.CMS.CacheTTL),
		cms.WithFallbackLang(cfg.DefaultLanguage),
		cms.WithLogger(log.Named("cms")),
	)

	introData, err = handlersPkg.BuildIntroData(intro.Default())
	if err != nil {
		return fmt.Errorf("intro timeline: %w", err)
	}
	analytics = handlersPkg.AnalyticsFromConfig(cfg.Analytics)

	if !devMode {
		tc, err := parseTemplates()
		if err != nil {
			return fmt.Errorf("parse templates: %w", err)
		}
		tmplCache = tc
	}
	return nil
}

// newRouter builds the HTTP routes. Gated pages render whichever gate view is
// current in place, at the requested path.
func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For; only the Cloud Run front end may set it.
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "/assets"))

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Locale(i18nBundle))
		r.Use(mw.CSRF(siteCfg.IsProd()))
		r.Use(mw.VaryLocale)
		r.Use(mw.Gate(sessionManager, logger, gate.WithClock(siteNow)))

		r.Get("/", HomeHandler)
		r.Get("/blog", BlogHandler)
		r.Get("/contact", ContactHandler)
		r.Get("/legal/{slug}", LegalHandler)

		r.Post("/gate/verify", GateVerifyHandler)
		r.Post("/gate/intro/complete", IntroCompleteHandler)
		if devMode {
			r.Post("/gate/reset", GateResetHandler)
		}

		r.NotFound(NotFoundHandler)
	})
	return r
}

// siteNow is the current time on the visitors' calendar.
func siteNow() time.Time { return clock().In(siteLocation) }

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return siteNow().Year() },
		"t": func(lang, key string) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.T(lang, key)
		},
		"tf": func(lang, key string, args ...any) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.Tf(lang, key, args...)
		},
		"fmtDate": format.FmtDate,
		"isoDate": format.FmtISODate,
		// JSON-LD payloads are produced by seo.JSON from trusted values
		"jsonld": func(s string) template.JS { return template.JS(s) },
	}
}

func parseTemplates() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(templateFuncs()).ParseFiles(files...)
}

// render executes the base layout with status. In dev mode, templates are reparsed on each request.
func render(w http.ResponseWriter, r *http.Request, status int, data any) {
	t := tmplCache
	if devMode {
		tc, err := parseTemplates()
		if err != nil {
			observability.FromContext(r.Context()).Error("template parse", zap.Error(err))
			mw.WriteError(w, r, http.StatusInternalServerError, "template parse error")
			return
		}
		t = tc
	}
	if t == nil {
		mw.WriteError(w, r, http.StatusInternalServerError, "template not initialized")
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		observability.FromContext(r.Context()).Error("template exec", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template exec error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
