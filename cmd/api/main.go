package main

import (
	"log"

	"github.com/travelmandu/trm-backend/internal/config"
	"github.com/travelmandu/trm-backend/internal/geo"
	"github.com/travelmandu/trm-backend/internal/media"
	"github.com/travelmandu/trm-backend/internal/repository/minio"
	"github.com/travelmandu/trm-backend/internal/repository/postgres"
	"github.com/travelmandu/trm-backend/internal/service"
	transport "github.com/travelmandu/trm-backend/internal/transport/http"
	"github.com/travelmandu/trm-backend/internal/util"
	"github.com/travelmandu/trm-backend/internal/weather"
)

func main() {
	cfg := config.Load()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	minioClient, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect to object storage: %v", err)
	}
	storage := minio.NewStorage(minioClient, cfg.PublicBaseURL)

	placeRepo := postgres.NewPlaceRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	packageRepo := postgres.NewPackageRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)
	userRepo := postgres.NewUserRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	blogRepo := postgres.NewBlogRepo(db)

	geocoder := geo.NewNominatimClient(cfg.NominatimBaseURL)
	weatherClient := weather.NewOpenWeatherClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.WeatherCacheTTL)
	imageProcessor := media.NewFFMPEGProcessor("ffmpeg", media.DefaultMaxDimension)
	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	authService := service.NewAuthService(userRepo, tokens, cfg.GoogleAudience)
	placeService := service.NewPlaceService(placeRepo, reviewRepo, storage, geocoder, weatherClient, service.PlaceServiceConfig{
		Bucket:         cfg.MinIOBucketPlaces,
		MaxImageBytes:  cfg.ImageMaxBytes,
		ImageProcessor: imageProcessor,
	})
	reviewService := service.NewReviewService(reviewRepo, placeRepo, nil)
	packageService := service.NewPackageService(packageRepo, storage, service.PackageServiceConfig{
		Bucket:         cfg.MinIOBucketPackages,
		ImageProcessor: imageProcessor,
	})
	bookingService := service.NewBookingService(bookingRepo, packageRepo, nil)
	blogService := service.NewBlogService(blogRepo, userRepo, notificationRepo, storage, service.BlogServiceConfig{
		Bucket:         cfg.MinIOBucketBlogs,
		ImageProcessor: imageProcessor,
	})
	notificationService := service.NewNotificationService(notificationRepo)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterAuth(e, authService)
	transport.RegisterPlaces(e, authService, placeService, cfg.PublicBaseURL)
	transport.RegisterReviews(e, authService, reviewService)
	transport.RegisterPackages(e, authService, packageService)
	transport.RegisterBookings(e, authService, bookingService)
	transport.RegisterPayments(e, bookingService)
	transport.RegisterBlogs(e, authService, blogService)
	transport.RegisterNotifications(e, authService, notificationService)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
