package server

import (
	"fmt"
	"net/http"
	"time"

	app "eventserv/src/app"
	cfg "eventserv/src/configuration"
	db "eventserv/src/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func RunServer(config *cfg.Properties) {
	// Create Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "X-Requested-With", "Content-Type", "Content-Length", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	pprof.Register(router)

	dbConn, err := db.Connect(config)
	if err != nil {
		logrus.Fatalf("database not respond: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		logrus.Fatalf("could not sync database schema: %v", err)
	}
	store := db.NewEventStore(dbConn)

	var storage app.ImageStorage
	clientS3, err := app.NewMinioS3Client(
		config.S3.Host,
		config.S3.AccessKey,
		config.S3.SecretKey,
		config.S3.Bucket,
		config.S3.UseSSL)
	if err != nil {
		logrus.Errorf("could not connect to minio: %v", err)
	} else {
		storage = clientS3
	}

	var verifier app.TokenVerifier
	oidcVerifier, err := app.NewOIDCVerifier(config.Auth.Host, config.Auth.ID)
	if err != nil {
		logrus.Errorf("could not create OIDC verifier, mutating routes will reject: %v", err)
	} else {
		verifier = oidcVerifier
	}

	geocoder := app.NewHTTPGeocoder(config.Geo.Host, config.Geo.Key, config.Geo.ReadTimeout)
	mailer := app.NewSendGridMailer(config.Mail.Host, config.Mail.Key, config.Mail.From, config.Mail.ReadTimeout)

	handler := NewHandler(store, geocoder, mailer, storage, verifier)
	registerRoutes(router, handler)

	// Start the server
	router.Run(fmt.Sprintf(":%s", config.Server.Port))
}

func registerRoutes(router *gin.Engine, handler *AppHandler) {
	router.GET("/health", handler.GetHealth)

	// Register Routes
	events := router.Group("/events")
	events.GET("", handler.GetEvents)
	events.GET("/:eid", handler.GetEventByID)
	events.GET("/:eid/nested", handler.GetEventNested)
	events.GET("/user/:uid", handler.GetEventsByUserID)
	events.GET("/specific/:eid", handler.GetSpecificEvent)
	events.POST("/category", handler.GetEventsByCategory)
	events.GET("/category/:catid", handler.GetEventsByCategoryID)
	events.POST("/city", handler.GetEventsByCity)
	events.GET("/city/:ctid", handler.GetEventsByCityID)
	events.POST("/prefecture", handler.GetEventsByPrefecture)
	events.GET("/prefecture/:prefid", handler.GetEventsByPrefectureID)
	events.POST("/startdate", handler.GetEventsByStartDate)
	events.GET("/startdate/:date", handler.GetEventsByStartDateParam)
	events.GET("/city/:ctid/startdate/:date", handler.GetEventsByCityIDAndStartDate)
	events.GET("/prefecture/:prefid/startdate/:date", handler.GetEventsByPrefIDAndStartDate)
	events.GET("/category/:catid/startdate/:date", handler.GetEventsByCategoryIDAndStartDate)
	events.GET("/c/cities", handler.GetCities)
	events.GET("/cat/categories", handler.GetCategories)
	events.GET("/p/prefectures", handler.GetPrefectures)
	events.GET("/comment/:eid", handler.GetComments)
	events.POST("/image", handler.UploadImages)

	// Every route below requires a verified bearer credential.
	authed := events.Group("", handler.CheckAuth)
	authed.POST("", handler.CreateEvent)
	authed.POST("/report/:eid", handler.AddReport)
	authed.POST("/comment/:eid", handler.AddComment)
	authed.DELETE("/comment/:comid/event/:eid", handler.DeleteComment)
	authed.PATCH("/:eid", handler.UpdateEvent)
	authed.DELETE("/:eid", handler.DeleteEvent)

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "Could not find this route."})
	})
}
