package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gamedev-academy/academy/internal/catalog"
	"github.com/gamedev-academy/academy/internal/draft"
	"github.com/gamedev-academy/academy/internal/handler"
	appI18n "github.com/gamedev-academy/academy/internal/i18n"
	"github.com/gamedev-academy/academy/internal/model"
	"github.com/gamedev-academy/academy/internal/store"
	"github.com/gamedev-academy/academy/internal/youtube"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "academy",
		Short: "Game Dev Academy landing page backend",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `academy --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "academy.db", "SQLite database path")
	f.String("redis-url", "", "Redis URL for draft storage (empty = store drafts in SQLite)")
	f.String("courses", "", "Path to courses JSON (empty = embedded defaults)")
	f.String("quizzes", "", "Path to quizzes JSON (empty = embedded defaults)")
	f.String("resources", "", "Path to resources JSON (empty = embedded defaults)")
	f.String("projects", "", "Path to projects JSON (empty = embedded defaults)")
	f.String("youtube-key", "", "YouTube Data API key (empty disables video search)")
	f.String("youtube-url", "", "YouTube API base URL override")
	f.StringP("lang", "l", "en", "Default response language (en, ru)")
	f.Int("quiz-duration", 300, "Quiz countdown in seconds")
	f.Duration("submit-latency", 2*time.Second, "Simulated submission latency")
	f.StringSlice("cors-origins", []string{"http://localhost:5173"}, "Allowed CORS origins")
	f.Bool("secure-cookies", true, "Set Secure flag on the client cookie")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submissions and quiz results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "academy.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("ACADEMY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("academy")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/academy")
	v.AddConfigPath("/etc/academy")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Drafts go to Redis when configured, otherwise to the SQLite store.
	var drafts draft.Store = db.Drafts()
	if redisURL := v.GetString("redis-url"); redisURL != "" {
		r, err := draft.NewRedis(redisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		if err := r.Ping(context.Background()); err != nil {
			return fmt.Errorf("redis health check: %w", err)
		}
		slog.Info("draft storage on redis", "url", redisURL)
		drafts = r
	}

	paths := catalog.Paths{
		Courses:   v.GetString("courses"),
		Quizzes:   v.GetString("quizzes"),
		Resources: v.GetString("resources"),
		Projects:  v.GetString("projects"),
	}
	cat, err := catalog.Load(paths)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := trackCatalogImports(db, paths); err != nil {
		return fmt.Errorf("track catalog imports: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	var videos *youtube.Client
	if key := v.GetString("youtube-key"); key != "" {
		videos = youtube.New(v.GetString("youtube-url"), key)
	} else {
		slog.Warn("no youtube-key configured, video search disabled")
	}

	cfg := model.ServerConfig{
		QuizDuration:  v.GetInt("quiz-duration"),
		CORSOrigins:   v.GetStringSlice("cors-origins"),
		SecureCookies: v.GetBool("secure-cookies"),
		SubmitLatency: v.GetDuration("submit-latency"),
	}

	h := handler.New(db, cat, drafts, videos, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Accept-Language"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"quiz_duration", cfg.QuizDuration,
		"cors_origins", cfg.CORSOrigins,
		"video_search", videos != nil,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportAll()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// trackCatalogImports records a sha256 of each catalog override file. The
// catalog is re-read from disk on every boot, so a changed file always takes
// effect; the hash check exists to flag the change, because persisted quiz
// progress and results reference the question set that was live when they
// were written.
func trackCatalogImports(db *store.Store, paths catalog.Paths) error {
	for _, path := range []string{paths.Courses, paths.Quizzes, paths.Resources, paths.Projects} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}

		if storedHash == hash {
			slog.Info("catalog file unchanged", "path", path)
			continue
		}
		if storedHash != "" {
			slog.Warn("catalog file changed since last boot, saved quiz progress may reference old questions",
				"path", path)
		}
		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("recorded catalog file", "path", path)
	}
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
