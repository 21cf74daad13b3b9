package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"bitbucket.org/mmdatafocus/procurement_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("procurement-backend")

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	devMode := config.DevMode()

	// Shutdown coordination: handle SIGTERM for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var store workflow.Store
	var catalog workflow.Catalog
	if devMode {
		mem := workflow.NewMemoryStore()
		seedMemoryStore(mem)
		store = mem
		catalog = workflow.NewFixtureCatalog(models.DemoInventoryRecords(), models.DemoSubstitutionPriorities())
		log.Println("DEV_MODE: serving from in-memory store with demo data")
	} else {
		store = workflow.NewGormStore()
		catalog = workflow.NewDBCatalog()
		// Start the HTTP server ASAP; until DB is ready the readiness gate
		// returns 503 for app endpoints. Redis is optional: the transition
		// lock degrades to the store CAS when it is absent.
		go func() {
			config.ConnectDatabaseWithRetry()
			models.MigrateTable()
			config.ConnectRedisWithRetry()
		}()
	}

	svc := workflow.NewPRService(store, catalog)
	r := newRouter(svc, catalog, devMode)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.WithField("port", port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("shutdown signal received; draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.LogError(logger, "server.go", "main", "Shutdown", nil, err)
	}
}

func newRouter(svc *workflow.PRService, catalog workflow.Catalog, devMode bool) *gin.Engine {
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Header("x-correlation-id", cid)
		c.Next()
	})

	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on database readiness.
		if !devMode && config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated); elsewhere allow all for developer convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "x-correlation-id")
	r.Use(cors.New(corsConfig))
	r.Use(gin.Recovery())

	r.GET("/health", healthHandler())

	r.GET("/pr", listPRsHandler(svc))
	r.POST("/pr", createPRHandler(svc))
	r.GET("/pr/:id", getPRHandler(svc))
	r.POST("/pr/:id/approve", approvePRHandler(svc))
	r.POST("/pr/:id/reject", rejectPRHandler(svc))
	r.POST("/pr/:id/assess", assessPRHandler(svc))
	r.POST("/pr/:id/assessment", recordAssessmentHandler(svc))
	r.GET("/pr/:id/assessment/last", lastAssessmentHandler(svc))

	r.GET("/inventory/:sku", getInventoryHandler(catalog))
	r.POST("/substitution", substitutionHandler(catalog))

	r.GET("/policy", listPolicyHandler(svc))

	return r
}

func seedMemoryStore(mem *workflow.MemoryStore) {
	ctx := context.Background()
	mem.SeedPolicyConfigs(models.DemoPolicyConfigs())
	for _, pr := range models.DemoPurchaseRequests() {
		mem.SeedPurchaseRequest(pr)
		if pr.Status == models.PurchaseRequestStatusRejected {
			assessment := models.DemoRejectionAssessment(pr)
			if err := mem.CreateAssessment(ctx, &assessment); err != nil {
				log.Printf("failed to seed demo assessment: %v", err)
			}
		}
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
