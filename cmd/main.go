package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/poofware/rental-service/internal/app"
	"github.com/poofware/rental-service/internal/config"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/controllers"
	"github.com/poofware/rental-service/internal/middleware"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/routes"
	"github.com/poofware/rental-service/internal/services"
	"github.com/poofware/rental-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize rental-service:", err)
	}
	defer application.Close()

	userRepo := repositories.NewUserRepository(application.DB)
	propertyRepo := repositories.NewPropertyRepository(application.DB)
	bookingRepo := repositories.NewBookingRepository(application.DB)
	reviewRepo := repositories.NewReviewRepository(application.DB)
	categoryRepo := repositories.NewCategoryRepository(application.DB)
	amenityRepo := repositories.NewAmenityRepository(application.DB)
	imageRepo := repositories.NewPropertyImageRepository(application.DB)
	userAccountRepo := repositories.NewUserAccountRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), app.SeedRepos{
			Users:      userRepo,
			Properties: propertyRepo,
			Categories: categoryRepo,
			Amenities:  amenityRepo,
			Bookings:   bookingRepo,
			Reviews:    reviewRepo,
		}); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	notifier := services.NewNotificationService(cfg)
	bookingService := services.NewBookingService(bookingRepo, propertyRepo, userRepo, notifier)
	propertyService := services.NewPropertyService(
		propertyRepo,
		bookingRepo,
		reviewRepo,
		categoryRepo,
		amenityRepo,
		imageRepo,
		userRepo,
		application.Cache,
	)
	searchService := services.NewSearchService(propertyRepo, application.Cache)
	reviewService := services.NewReviewService(reviewRepo, propertyRepo)
	catalogService := services.NewCatalogService(categoryRepo, amenityRepo, application.Cache)
	userService := services.NewUserService(userRepo, application.Cache)
	userAccountService := services.NewUserAccountService(userAccountRepo, userRepo)

	healthController := controllers.NewHealthController(application.DB)
	propertyController := controllers.NewPropertyController(propertyService, bookingService, searchService)
	bookingController := controllers.NewBookingController(bookingService)
	reviewController := controllers.NewReviewController(reviewService)
	catalogController := controllers.NewCatalogController(catalogService)
	userController := controllers.NewUserController(userService, userAccountService)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Root, healthController.RootHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertiesSearch, propertyController.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyCheckAvailability, propertyController.CheckAvailabilityHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Properties, propertyController.ListHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Reviews, reviewController.ListHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.ReviewByID, reviewController.GetHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Categories, catalogController.ListCategoriesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.CategoryByID, catalogController.GetCategoryHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Amenities, catalogController.ListAmenitiesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AmenityByID, catalogController.GetAmenityHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Users, userController.RegisterHandler).Methods(http.MethodPost)

	// Owners may see their own inactive listings
	optional := router.NewRoute().Subrouter()
	optional.Use(middleware.OptionalAuthMiddleware(cfg.RSAPublicKey))
	optional.HandleFunc(routes.PropertyByID, propertyController.GetHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.Properties, propertyController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertyByID, propertyController.ReplaceHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.PropertyByID, propertyController.PatchHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.PropertyByID, propertyController.DeleteHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.PropertyImages, propertyController.AddImageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertyImageByID, propertyController.DeleteImageHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.Bookings, bookingController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Bookings, bookingController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingByID, bookingController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingByID, bookingController.UpdateHandler).Methods(http.MethodPut, http.MethodPatch)
	secured.HandleFunc(routes.BookingByID, bookingController.DeleteHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.Reviews, reviewController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ReviewByID, reviewController.UpdateHandler).Methods(http.MethodPut, http.MethodPatch)
	secured.HandleFunc(routes.ReviewByID, reviewController.DeleteHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.UsersMe, userController.GetMeHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UsersMe, userController.PatchMeHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.UsersMe, userController.DeleteMeHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.UserAccounts, userController.ListUserAccountsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserAccounts, userController.CreateUserAccountHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UserAccountsByID, userController.GetUserAccountHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserAccountsByID, userController.UpdateUserAccountHandler).Methods(http.MethodPut, http.MethodPatch)
	secured.HandleFunc(routes.UserAccountsByID, userController.DeleteUserAccountHandler).Methods(http.MethodDelete)

	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.RSAPublicKey))

	admin.HandleFunc(routes.Categories, catalogController.CreateCategoryHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.CategoryByID, catalogController.UpdateCategoryHandler).Methods(http.MethodPut)
	admin.HandleFunc(routes.CategoryByID, catalogController.DeleteCategoryHandler).Methods(http.MethodDelete)
	admin.HandleFunc(routes.Amenities, catalogController.CreateAmenityHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AmenityByID, catalogController.UpdateAmenityHandler).Methods(http.MethodPut)
	admin.HandleFunc(routes.AmenityByID, catalogController.DeleteAmenityHandler).Methods(http.MethodDelete)

	c := cron.New()
	_, reindexErr := c.AddFunc(constants.SearchReindexCronSpec, func() {
		if e := searchService.RebuildIndex(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled search reindex failed")
		}
	})
	if reindexErr != nil {
		utils.Logger.WithError(reindexErr).Fatal("Failed to schedule search reindex cron")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	chain := alice.New(
		middleware.RecoverPanic,
		middleware.RequestLogger,
		middleware.SecureHeaders,
		co.Handler,
	)

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, chain.Then(router)); err != nil {
		utils.Logger.Fatal("rental-service failed to start:", err)
	}
}
