package main

import (
	"log"
	"net/http"

	"citizenreport/config"
	"citizenreport/controllers"
	"citizenreport/models"
	"citizenreport/routes"
	"citizenreport/services/authz"
	"citizenreport/services/comments"
	"citizenreport/services/geo"
	"citizenreport/services/issues"
	"citizenreport/services/media"
	"citizenreport/services/report"
	"citizenreport/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	config.ConnectRedis()

	if err := models.EnsureIssueIndexes(db.Collection("issues")); err != nil {
		log.Printf("issue index creation warnings: %v", err)
	}
	if err := models.EnsureCommentIndexes(db.Collection("comments")); err != nil {
		log.Printf("comment index creation warnings: %v", err)
	}
	if err := models.EnsureAdminGrantIndex(db.Collection("admin_grants")); err != nil {
		log.Printf("admin grant index creation warnings: %v", err)
	}

	gate := authz.NewGate(storage.NewGrantStore(db.Collection("admin_grants")), cfg.AdminEmail)
	if cfg.AdminEmail == "" {
		log.Println("ADMIN_EMAIL not set; admin role only available via existing grants")
	}

	resolver := geo.NewResolver(geo.NewNominatimClient(cfg.GeocoderBaseURL), nil)
	resolver.Cache = config.RedisClient
	resolver.CacheTTL = cfg.GeocodeCacheTTL
	resolver.DeviceTimeout = cfg.DeviceTimeout

	var uploader report.Uploader
	if cfg.MinioEndpoint != "" {
		u, err := media.NewUploader(media.Options{
			Endpoint:   cfg.MinioEndpoint,
			AccessKey:  cfg.MinioAccessKey,
			SecretKey:  cfg.MinioSecretKey,
			Bucket:     cfg.MinioBucket,
			PublicBase: cfg.MinioPublicBase,
			UseSSL:     cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
		uploader = u
	} else {
		log.Println("MINIO_ENDPOINT not set; photo uploads disabled")
	}

	issueService := issues.NewService(storage.NewIssueStore(db.Collection("issues")), gate)
	commentManager := comments.NewManager(
		storage.NewCommentStore(db.Collection("comments")),
		storage.NewUserStore(db.Collection("users")),
		gate,
	)
	workflow := report.NewWorkflow(gate, resolver, uploader, issueService)

	controllers.Setup(gate, issueService, commentManager, workflow, resolver)

	r := gin.Default()

	routes.AuthRoutes(r)
	routes.IssueRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
