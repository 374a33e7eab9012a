package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ecoisla/market/auth"
	"github.com/ecoisla/market/config"
	productcontroller "github.com/ecoisla/market/controllers/product"
	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/ecoisla/market/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	dsn := cfg.DSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := models.OpenDatabase(cfg.DBDriver, dsn)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	feed := productcontroller.NewHub(logger.Named("feed"))
	defer feed.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	// Product photos arrive as multipart uploads
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:      db,
		Tokens:  auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Feed:    feed,
		Uploads: productcontroller.Uploads{Dir: cfg.UploadDir},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.BackupDir != "" {
		go startDailyBackupAtFixedTime(ctx, logger.Named("backup"), cfg.UploadDir, cfg.BackupDir, cfg.BackupRetention, 2, 0)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logger.Info("Server running",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.DBDriver),
			zap.String("upload_dir", cfg.UploadDir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	return logger
}

// startDailyBackupAtFixedTime copies the upload folder every day at a fixed
// hour and removes backups older than retention.
func startDailyBackupAtFixedTime(ctx context.Context, logger *zap.Logger, srcDir, backupDir string, retention time.Duration, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		logger.Info("Next image backup scheduled", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		destDir := filepath.Join(backupDir, time.Now().Format("2006-01-02_15-04-05"))
		if err := copyDir(srcDir, destDir); err != nil {
			logger.Error("Failed to back up images", zap.Error(err))
		} else {
			logger.Info("Images backed up", zap.String("dest", destDir))
		}

		cleanupOldBackups(logger, backupDir, retention)
	}
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = copyDir(srcPath, destPath)
		} else {
			err = copyFile(srcPath, destPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func cleanupOldBackups(logger *zap.Logger, backupDir string, retention time.Duration) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		logger.Error("Failed to read backup directory", zap.Error(err))
		return
	}

	cutoff := time.Now().Add(-retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(backupDir, entry.Name())
		info, err := os.Stat(folderPath)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(folderPath); err != nil {
			logger.Error("Failed to remove old backup", zap.String("path", folderPath), zap.Error(err))
		} else {
			logger.Info("Removed old backup", zap.String("path", folderPath))
		}
	}
}
