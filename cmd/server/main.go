package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"academy-service/internal/api"
	"academy-service/internal/events"
	"academy-service/internal/meet"
	"academy-service/internal/repository"
	"academy-service/internal/service"
	"academy-service/internal/tracing"
	_ "academy-service/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("academy-service")

	shutdownTracer, err := tracing.InitTracerProvider("academy-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	var (
		sessionRepo repository.SessionRepository
		userRepo    repository.UserRepository
		courseRepo  repository.CourseRepository
		groupRepo   repository.GroupRepository
	)

	if os.Getenv("DB_HOST") == "" {
		// No database configured: run against the in-memory store so the
		// service stays usable in local development.
		log.Println("DB_HOST not set. Using in-memory store.")
		sessionRepo = repository.NewMemorySessionRepository()
		userRepo = repository.NewMemoryUserRepository(nil)
		courseRepo = repository.NewMemoryCourseRepository(nil)
		groupRepo = repository.NewMemoryGroupRepository()
	} else {
		db := connectDB()
		defer db.Close()
		sessionRepo = repository.NewPostgresSessionRepository(db)
		userRepo = repository.NewPostgresUserRepository(db)
		courseRepo = repository.NewPostgresCourseRepository(db)
		groupRepo = repository.NewPostgresGroupRepository(db)
	}

	var provisioner meet.Provisioner
	if baseURL := os.Getenv("MEET_API_URL"); baseURL != "" {
		provisioner = meet.NewHTTPProvisioner(baseURL, os.Getenv("MEET_API_KEY"))
	} else {
		log.Println("MEET_API_URL not set. Using stub meeting provisioner.")
		provisioner = meet.StubProvisioner{}
	}

	var publisher events.EventPublisher = events.NoopPublisher{}
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		publisher, err = events.NewNatsPublisher(natsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		log.Println("Successfully connected to NATS.")

		_, err = events.NewLinkSubscriber(natsURL, sessionRepo, provisioner)
		if err != nil {
			log.Printf("WARNING: Failed to start link subscriber: %v", err)
			// Continue running even if subscriber fails, NATS may not be ready
		}
	} else {
		log.Println("NATS_URL not set. Events will not be published.")
	}

	sessionService := service.NewSessionService(sessionRepo, provisioner, publisher)
	scheduleService := service.NewScheduleService(sessionRepo, userRepo)
	payrollService := service.NewPayrollService(sessionRepo)
	groupService := service.NewGroupService(groupRepo, userRepo, courseRepo)
	statsService := service.NewStatsService(userRepo, sessionRepo, courseRepo, groupRepo)

	sessionHandler := api.NewSessionHandler(sessionService, scheduleService, payrollService)
	groupHandler := api.NewGroupHandler(groupService)
	directoryHandler := api.NewDirectoryHandler(userRepo, courseRepo, groupService, statsService)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "academy-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	sessionRoutes := v1.Group("/sessions")
	sessionRoutes.Use(api.AuthMiddleware())
	sessionRoutes.Get("/", sessionHandler.ListSessions)
	sessionRoutes.Get("/calendar", sessionHandler.GetCalendar)
	sessionRoutes.Get("/payroll", sessionHandler.GetPayroll)
	sessionRoutes.Get("/:id", sessionHandler.GetSessionDetails)
	sessionRoutes.Post("/schedule", sessionHandler.ScheduleSession)
	sessionRoutes.Post("/attendance", sessionHandler.MarkAttendance)
	sessionRoutes.Post("/:id/cancel", sessionHandler.CancelSession)

	groupRoutes := v1.Group("/groups")
	groupRoutes.Use(api.AuthMiddleware())
	groupRoutes.Get("/", groupHandler.ListGroups)
	groupRoutes.Post("/", groupHandler.CreateGroup)
	groupRoutes.Put("/:id", groupHandler.UpdateGroup)
	groupRoutes.Post("/:groupId/students", groupHandler.AddStudent)
	groupRoutes.Delete("/:groupId/students/:studentId", groupHandler.RemoveStudent)

	directoryRoutes := v1.Group("", api.AuthMiddleware())
	directoryRoutes.Get("/users", directoryHandler.ListUsers)
	directoryRoutes.Get("/courses", directoryHandler.ListCourses)
	directoryRoutes.Get("/stats", directoryHandler.GetStats)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8002"
	}

	log.Printf("Listening academy-service on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func connectDB() *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations() {
	fmt.Println("Running database migrations...")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
