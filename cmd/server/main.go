package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/auth"
	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/handlers"
	"github.com/julioborn/descuentos-sub000/internal/importer"
	"github.com/julioborn/descuentos-sub000/internal/issuance"
	"github.com/julioborn/descuentos-sub000/internal/middleware"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

func main() {
	_ = godotenv.Load() // Load .env file if exists

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}()

	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "descuentos"
	}
	database := client.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.WithError(err).Fatal("failed to ensure indexes")
	}
	cancel()

	store := db.NewStore(database)

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)

	qrBase := os.Getenv("QR_BASE_URL")
	if qrBase == "" {
		qrBase = "http://localhost:8080"
	}

	issuanceService := issuance.NewService(store.Beneficiaries)
	importService := importer.New(store.Beneficiaries)

	authHandler := handlers.NewAuthHandler(authService, store.Users)
	userHandler := handlers.NewUserHandler(authService, store.Users)
	playeroHandler := handlers.NewPlayeroHandler(issuanceService, store)
	beneficiaryHandler := handlers.NewBeneficiaryHandler(store.Beneficiaries, qrBase)
	discountHandler := handlers.NewDiscountHandler(store.Discounts)
	priceHandler := handlers.NewPriceHandler(store.Prices)
	chargeHandler := handlers.NewChargeHandler(store.Charges, store.Beneficiaries)
	importHandler := handlers.NewImportHandler(importService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/api/auth/login", authHandler.Login)

	// Attendant routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(authMiddleware.RequireRole(models.RolePlayero))
		r.Get("/api/playero/beneficiario", playeroHandler.Lookup)
		r.Post("/api/playero/consumir", playeroHandler.Consume)
		r.Post("/api/playero/cargas", playeroHandler.CreateCharge)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(authMiddleware.RequireRole(models.RoleAdmin))

		r.Post("/api/admin/beneficiarios", beneficiaryHandler.Create)
		r.Get("/api/admin/beneficiarios", beneficiaryHandler.List)
		r.Get("/api/admin/beneficiarios/{dni}", beneficiaryHandler.Get)
		r.Put("/api/admin/beneficiarios/{dni}", beneficiaryHandler.UpdateContact)
		r.Put("/api/admin/beneficiarios/{dni}/activo", beneficiaryHandler.SetActive)
		r.Get("/api/admin/beneficiarios/{dni}/qr", beneficiaryHandler.CardQR)

		r.Post("/api/admin/descuentos", discountHandler.Create)
		r.Get("/api/admin/descuentos", discountHandler.List)
		r.Put("/api/admin/descuentos/{afiliacion}", discountHandler.Update)
		r.Delete("/api/admin/descuentos/{afiliacion}", discountHandler.Delete)

		r.Post("/api/admin/precios", priceHandler.Create)
		r.Get("/api/admin/precios", priceHandler.List)
		r.Put("/api/admin/precios/{producto}", priceHandler.Update)
		r.Delete("/api/admin/precios/{producto}", priceHandler.Delete)

		r.Get("/api/admin/cargas", chargeHandler.List)
		r.Get("/api/admin/estadisticas", chargeHandler.Stats)

		r.Post("/api/admin/importar/{variante}", importHandler.Import)

		r.Post("/api/admin/usuarios", userHandler.Create)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown failed")
	}
}
