package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/melodix/melodix-backend/internal/auth"
	"github.com/melodix/melodix-backend/internal/catalog"
	"github.com/melodix/melodix-backend/internal/config"
	"github.com/melodix/melodix-backend/internal/database"
	"github.com/melodix/melodix-backend/internal/handler"
	"github.com/melodix/melodix-backend/internal/metrics"
	"github.com/melodix/melodix-backend/internal/middleware"
	"github.com/melodix/melodix-backend/internal/notify"
	"github.com/melodix/melodix-backend/internal/playtrack"
	"github.com/melodix/melodix-backend/internal/queue"
	"github.com/melodix/melodix-backend/internal/repository"
	"github.com/melodix/melodix-backend/internal/router"
	"github.com/melodix/melodix-backend/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	if err := database.RunMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	playlists := repository.NewPlaylistRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	comments := repository.NewCommentRepo(db)
	history := repository.NewHistoryRepo(db)
	downloads := repository.NewDownloadRepo(db)
	notifications := repository.NewNotificationRepo(db)
	plays := repository.NewPlayRepo(db)
	adminSongs := repository.NewAdminSongRepo(db)
	lyrics := repository.NewLyricsRepo(db)

	issuer := auth.NewIssuer(users, cfg.AccessTTLHours, cfg.RefreshTTLDays)
	tokenAuth := &auth.TokenAuthenticator{Store: users, Issuer: issuer}
	anyAuth := auth.Chain{tokenAuth, &auth.SessionAuthenticator{Store: sessions}}

	// Without a broker notifications are written straight to the table;
	// with one they go through the queue and a background consumer.
	var notifier notify.Notifier = notify.NewStoreNotifier(notifications)
	if cfg.AMQPURL != "" {
		notifier = notify.NewQueueNotifier(cfg.AMQPURL, notifications)
		go queue.StartNotificationConsumer(cfg.AMQPURL, notifications)
	}

	files, err := storage.New(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	songCatalog := catalog.NewClient(cfg.ITunesBaseURL, cfg.LyricsBaseURL)
	tracker := playtrack.NewTracker(plays)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	mws := router.Middlewares{TokenAuth: tokenAuth, AnyAuth: anyAuth}
	if rdb := config.NewRedisClient(); rdb != nil {
		mws.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		mws.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	handlers := router.Handlers{
		Health:       handler.NewHealthHandler(db),
		Auth:         handler.NewAuthHandler(cfg, users, sessions, issuer, notifier),
		Profile:      handler.NewProfileHandler(users),
		Song:         handler.NewSongHandler(songCatalog, lyrics, collector),
		Playlist:     handler.NewPlaylistHandler(playlists),
		Favorite:     handler.NewFavoriteHandler(favorites),
		Comment:      handler.NewCommentHandler(comments, notifier),
		History:      handler.NewHistoryHandler(history, notifier),
		Download:     handler.NewDownloadHandler(downloads, notifier),
		Play:         handler.NewPlayHandler(tracker, plays, collector),
		Notification: handler.NewNotificationHandler(notifications, notifier),
		AdminSong:    handler.NewAdminSongHandler(adminSongs, users, songCatalog, files, notifier),
		AdminUser:    handler.NewAdminUserHandler(users, sessions, cfg.BcryptCost),
		Lyric:        handler.NewLyricHandler(lyrics),
	}

	// Expired per-device sessions are swept in the background so the
	// table does not grow without bound.
	go func() {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for range t.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := sessions.PurgeExpired(ctx); err != nil {
				log.Printf("session purge: %v", err)
			} else if n > 0 {
				log.Printf("session purge: removed %d expired sessions", n)
			}
			cancel()
		}
	}()

	e := router.New(handlers, mws, collector, registry, cfg.UploadDir)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
