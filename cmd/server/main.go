package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/client"
	"github.com/civicgrid/be-civic-works/internal/config"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/handler"
	"github.com/civicgrid/be-civic-works/internal/middleware"
	"github.com/civicgrid/be-civic-works/internal/repository"
	"github.com/civicgrid/be-civic-works/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	level, err := zerolog.ParseLevel(cfg.Service.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Logger()

	log.Info().
		Str("environment", cfg.Service.Environment).
		Msg("Starting Civic Works Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.Database,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnTime: cfg.Database.MaxConnTime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize repositories
	issueRepo := repository.NewIssueRepository(db)
	tenderRepo := repository.NewTenderRepository(db)
	bidRepo := repository.NewBidRepository(db)
	workRepo := repository.NewWorkProgressRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize the NATS JetStream publisher. An empty NATS_URL disables it.
	publisher, err := client.NewNotificationPublisher(cfg.NATS.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create notification publisher")
	}
	if cfg.NATS.URL != "" {
		log.Info().Str("nats_url", cfg.NATS.URL).Msg("Notification publisher initialized")
	} else {
		log.Warn().Msg("NATS_URL not set, notification publishing disabled")
	}

	// Initialize services
	issueService := service.NewIssueService(db, issueRepo, assignmentRepo, orgRepo, communityRepo, publisher, log)
	tenderService := service.NewTenderService(db, tenderRepo, issueRepo, assignmentRepo, orgRepo, publisher, log)
	bidService := service.NewBidService(db, bidRepo, tenderRepo, issueRepo, assignmentRepo, notificationRepo, publisher, log)
	workService := service.NewWorkService(db, workRepo, tenderRepo, issueRepo, assignmentRepo, notificationRepo, publisher, log)
	communityService := service.NewCommunityService(communityRepo, issueRepo, log)
	directoryService := service.NewDirectoryService(profileRepo, orgRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)

	// Setup HTTP routes
	httpHandler := handler.NewHTTPHandler(
		issueService,
		tenderService,
		bidService,
		workService,
		communityService,
		directoryService,
		notificationService,
		log,
	)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Issue routes
	mux.HandleFunc("/api/v1/issues", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListIssues(w, r)
		case http.MethodPost:
			httpHandler.ReportIssue(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/issues/get", httpHandler.GetIssue)
	mux.HandleFunc("/api/v1/issues/acknowledge", httpHandler.AcknowledgeIssue)
	mux.HandleFunc("/api/v1/issues/route-area", httpHandler.RouteIssueToArea)
	mux.HandleFunc("/api/v1/issues/route-department", httpHandler.RouteIssueToDepartment)
	mux.HandleFunc("/api/v1/issues/reject", httpHandler.RejectIssue)
	mux.HandleFunc("/api/v1/issues/close", httpHandler.CloseIssue)
	mux.HandleFunc("/api/v1/issues/vote", httpHandler.VoteIssue)
	mux.HandleFunc("/api/v1/issues/assignments", httpHandler.GetAssignmentTrail)

	// Tender routes
	mux.HandleFunc("/api/v1/tenders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListTenders(w, r)
		case http.MethodPost:
			httpHandler.CreateTender(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/tenders/get", httpHandler.GetTender)
	mux.HandleFunc("/api/v1/tenders/publish", httpHandler.PublishTender)
	mux.HandleFunc("/api/v1/tenders/close-bidding", httpHandler.CloseBidding)
	mux.HandleFunc("/api/v1/tenders/cancel", httpHandler.CancelTender)

	// Bid routes
	mux.HandleFunc("/api/v1/bids", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListBids(w, r)
		case http.MethodPost:
			httpHandler.SubmitBid(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/bids/accept", httpHandler.AcceptBid)
	mux.HandleFunc("/api/v1/bids/withdraw", httpHandler.WithdrawBid)

	// Work progress routes
	mux.HandleFunc("/api/v1/work-progress", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListProgress(w, r)
		case http.MethodPost:
			httpHandler.SubmitProgress(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/work-progress/approve", httpHandler.ApproveProgress)
	mux.HandleFunc("/api/v1/work-progress/reject", httpHandler.RejectProgress)

	// Community routes
	mux.HandleFunc("/api/v1/community/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListPosts(w, r)
		case http.MethodPost:
			httpHandler.CreatePost(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/feedback", httpHandler.SubmitFeedback)

	// Directory routes
	mux.HandleFunc("/api/v1/profiles", httpHandler.RegisterProfile)
	mux.HandleFunc("/api/v1/profiles/get", httpHandler.GetProfile)
	mux.HandleFunc("/api/v1/departments", httpHandler.ListDepartments)
	mux.HandleFunc("/api/v1/officials", httpHandler.ListOfficials)

	// Notification routes
	mux.HandleFunc("/api/v1/notifications", httpHandler.ListNotifications)
	mux.HandleFunc("/api/v1/notifications/read", httpHandler.MarkNotificationRead)

	// Apply middleware
	var h http.Handler = mux
	h = middleware.RequestID(h)
	h = middleware.Logger(&log)(h)
	h = middleware.Recovery(&log)(h)
	h = middleware.CORS([]string{"*"})(h)
	h = middleware.Timeout(30 * time.Second)(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
