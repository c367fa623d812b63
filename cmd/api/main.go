package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"renterra/internal/adapter/api"
	"renterra/internal/adapter/api/handler"
	apimiddleware "renterra/internal/adapter/api/middleware"
	"renterra/internal/adapter/api/router"
	"renterra/internal/adapter/repository"
	"renterra/internal/domain/service"
	"renterra/internal/infrastructure/firebase"
	"renterra/internal/infrastructure/notification"
	"renterra/internal/scheduler"
	"renterra/internal/usecase"
	"renterra/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Service account from the environment in production, from a file locally.
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	itemRepo := repository.NewFirestoreItemRepository(firestoreClient)
	rentalRepo := repository.NewFirestoreRentalRepository(firestoreClient)
	refundRepo := repository.NewFirestoreRefundRepository(firestoreClient)
	disputeRepo := repository.NewFirestoreDisputeRepository(firestoreClient)

	firebaseAuthClient := firebase.NewAuthClient(authClient)

	gateway := service.NewSimulatedPaymentGateway()

	notifier := notification.NewFCMNotifier(messagingClient, userRepo)
	dispatcher := notification.NewDispatcher(notifier, 256)
	dispatcher.Start(ctx)

	refundCalc := usecase.NewRefundCalculator(cfg.CancellationWindowHours)

	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	itemUseCase := usecase.NewItemUseCase(itemRepo)
	rentalUseCase := usecase.NewRentalUseCase(
		rentalRepo,
		itemRepo,
		userRepo,
		refundRepo,
		gateway,
		refundCalc,
		dispatcher,
		cfg.CancellationWindowHours,
		cfg.PayoutHoldHours,
	)
	settlementUseCase := usecase.NewSettlementUseCase(rentalRepo, gateway, dispatcher)
	disputeUseCase := usecase.NewDisputeUseCase(
		disputeRepo,
		rentalRepo,
		refundRepo,
		userRepo,
		gateway,
		dispatcher,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	userHandler := handler.NewUserHandler(userUseCase)
	itemHandler := handler.NewItemHandler(itemUseCase)
	rentalHandler := handler.NewRentalHandler(rentalUseCase, settlementUseCase)
	disputeHandler := handler.NewDisputeHandler(disputeUseCase)
	adminHandler := handler.NewAdminHandler(disputeUseCase, settlementUseCase)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	router.SetupUserRoutes(e, userHandler, authMiddleware)
	router.SetupItemRoutes(e, itemHandler, authMiddleware)
	router.SetupRentalRoutes(e, rentalHandler, authMiddleware)
	router.SetupDisputeRoutes(e, disputeHandler, authMiddleware)
	router.SetupAdminRoutes(e, adminHandler, authMiddleware, adminMiddleware)

	sched, err := scheduler.New(settlementUseCase, cfg.PayoutPollSchedule)
	if err != nil {
		log.Fatalf("Failed to set up scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
