package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "coalhub/docs"
	"coalhub/handler"
	"coalhub/middleware"
	"coalhub/service/catalog"
	"coalhub/service/db"
	"coalhub/service/etc"
	"coalhub/service/events"
	"coalhub/service/metrics"
	"coalhub/service/record"
	"coalhub/service/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginlogrus "github.com/toorop/gin-logrus"
)

// @title       coalhub API
// @version     dev
// @description Testing record API with weighted quality averages.
// @basePath    /

func setupRouter(h *handler.Handler, m *metrics.Metrics, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	// Client addresses key the rate limiter, so forwarding headers are only
	// read from known proxies.
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(ginlogrus.Logger(log.StandardLogger()), gin.Recovery())
	r.Use(middleware.MetricsMiddleware(m))

	r.GET("/ping", handler.HandlePing)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.RegisterRoutes(r)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r, nil
}

func newPublisher(conf *etc.Configuration) events.Publisher {
	if !conf.Events.Enabled {
		return events.Noop{}
	}
	log.WithField("topic", conf.Events.Kafka.Topic).Info("Publishing record events to Kafka")
	return events.NewKafka(conf.Events.Kafka.Brokers, conf.Events.Kafka.Topic)
}

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	if err := etc.Init(*configPath); err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	conf := etc.Config

	ctx := context.Background()
	st, err := db.Open(ctx, conf)
	if err != nil {
		log.WithError(err).Fatal("Failed to open record store")
	}
	files, err := storage.FromConfig(ctx, conf)
	if err != nil {
		log.WithError(err).Fatal("Failed to open attachment storage")
	}
	publisher := newPublisher(conf)
	m := metrics.New()

	records := record.New(st,
		record.WithPublisher(publisher),
		record.WithMetrics(m),
		record.WithFiles(files),
	)
	limiter := middleware.NewRateLimiter(conf.Server.RateLimit.RPS, conf.Server.RateLimit.Burst, nil)
	h := handler.New(handler.Config{
		Records:       records,
		Catalog:       catalog.Default(),
		Storage:       files,
		MaxUploadSize: conf.Storage.MaxUploadSize,
		RateLimit:     limiter.Middleware(),
	})

	router, err := setupRouter(h, m, conf.Server.TrustedProxies)
	if err != nil {
		log.WithError(err).Fatal("Invalid trusted proxies")
	}
	srv := &http.Server{
		Addr:    conf.Server.Addr,
		Handler: router,
	}

	go func() {
		// service connections
		log.WithField("addr", conf.Server.Addr).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Error listening")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if err := publisher.Close(); err != nil {
		log.WithError(err).Error("Failed to close event publisher")
	}
	if err := st.Close(); err != nil {
		log.WithError(err).Error("Failed to close record store")
	}
	log.Info("Server exiting")
}
