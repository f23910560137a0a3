// Package server assembles the HTTP application.
package server

import (
	"strings"
	"time"

	"rental-backend/internal/accounts"
	"rental-backend/internal/admin"
	"rental-backend/internal/audit"
	"rental-backend/internal/auth"
	"rental-backend/internal/clients"
	"rental-backend/internal/config"
	"rental-backend/internal/contracts"
	"rental-backend/internal/dashboard"
	"rental-backend/internal/fleet"
	"rental-backend/internal/httpx"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/report"
	"rental-backend/internal/reports"
	"rental-backend/internal/staff"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Sessions auth.SessionStore
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// optional, defaults are built from Config
	Reports     *report.Generator
	Provisioner *accounts.Provisioner
	Now         func() time.Time
}

func New(d Deps) *fiber.App {
	cfg := d.Config
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Reports == nil {
		d.Reports = report.NewGenerator(cfg.FontPath, cfg.Location())
	}
	if d.Provisioner == nil {
		d.Provisioner = accounts.NewProvisioner(bcrypt.DefaultCost)
	}

	app := fiber.New(fiber.Config{
		AppName:      "rental-backend",
		ErrorHandler: httpx.ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestLogger(d.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + HeaderRequestID,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: !strings.Contains(cfg.CORSOrigins, "*"),
	}))
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
	}

	app.Get("/healthz", healthHandler(d.DB))
	if d.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	st := store.New(d.DB)
	today := func() time.Time { return models.Today(d.Now(), cfg.Location()) }

	authSvc := &auth.Service{
		DB:           d.DB,
		Sessions:     d.Sessions,
		Secret:       cfg.JWTSecret,
		TTL:          cfg.SessionTTL,
		SecureCookie: cfg.AppEnv == "production",
		Metrics:      d.Metrics,
		Log:          d.Log,
		Now:          d.Now,
	}
	carSvc := fleet.NewService(st)
	clientSvc := clients.NewService(st)
	contractSvc := contracts.NewService(st, d.Metrics, cfg.Location())
	staffSvc := staff.NewService(st, d.Provisioner)
	builder := reports.NewBuilder(st, d.Reports, d.Metrics)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(authSvc))

	// Protected
	protected := api.Group("", auth.Middleware(authSvc))
	staffOnly := auth.RequireStaff()

	protected.Post("/auth/logout", auth.LogoutHandler(authSvc))
	protected.Get("/auth/me", auth.MeHandler(authSvc))

	// Dashboard
	protected.Get("/dashboard", dashboard.HomeHandler(st, today))
	protected.Get("/reports/dashboard/revenue/json", dashboard.RevenueJSONHandler(st))
	protected.Get("/reports/dashboard/:chart", dashboard.ChartHandler(st))

	// Reports
	protected.Get("/reports/contracts", reports.Handler(builder, reports.KindContracts, reports.FormatPDF))
	protected.Get("/reports/cars", reports.Handler(builder, reports.KindCars, reports.FormatPDF))
	protected.Get("/reports/contracts.xlsx", reports.Handler(builder, reports.KindContracts, reports.FormatXLSX))
	protected.Get("/reports/cars.xlsx", reports.Handler(builder, reports.KindCars, reports.FormatXLSX))

	// Cars
	protected.Get("/cars", fleet.ListCarsHandler(st))
	protected.Get("/cars/get_price/:id", fleet.GetPriceHandler(carSvc))
	protected.Get("/cars/:id", fleet.GetCarHandler(carSvc))
	protected.Post("/cars", fleet.CreateCarHandler(carSvc))
	protected.Put("/cars/:id", fleet.UpdateCarHandler(carSvc))
	protected.Delete("/cars/:id", fleet.DeleteCarHandler(carSvc))

	// Clients
	protected.Get("/clients", clients.ListClientsHandler(st))
	protected.Get("/clients/:id", clients.GetClientHandler(clientSvc))
	protected.Post("/clients", clients.CreateClientHandler(clientSvc))
	protected.Put("/clients/:id", clients.UpdateClientHandler(clientSvc))
	protected.Delete("/clients/:id", clients.DeleteClientHandler(clientSvc))

	// Contracts
	protected.Get("/contracts", contracts.ListContractsHandler(st, contractSvc))
	protected.Get("/contracts/:id", contracts.GetContractHandler(contractSvc))
	protected.Post("/contracts", contracts.CreateContractHandler(contractSvc))
	protected.Put("/contracts/:id", contracts.UpdateContractHandler(contractSvc))
	protected.Delete("/contracts/:id", contracts.DeleteContractHandler(contractSvc))

	// Employees: anyone signed in may look, only staff may change
	protected.Get("/employees", staff.ListEmployeesHandler(st))
	protected.Get("/employees/:id", staff.GetEmployeeHandler(staffSvc))
	protected.Post("/employees", staffOnly, staff.CreateEmployeeHandler(staffSvc))
	protected.Put("/employees/:id", staffOnly, staff.UpdateEmployeeHandler(staffSvc))
	protected.Delete("/employees/:id", staffOnly, staff.DeleteEmployeeHandler(staffSvc))

	// Branches and reference data
	protected.Get("/branches", admin.ListBranchesHandler(st))
	protected.Get("/branches/:id", admin.GetBranchHandler(st))
	protected.Post("/branches", staffOnly, admin.CreateBranchHandler(st))
	protected.Put("/branches/:id", staffOnly, admin.UpdateBranchHandler(st))
	protected.Delete("/branches/:id", staffOnly, admin.DeleteBranchHandler(st))
	protected.Get("/lookups", admin.LookupsHandler(st))

	// Audit
	protected.Get("/audit-logs", staffOnly, audit.ListAuditLogsHandler(d.DB))

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := fiber.Map{"status": "ok", "time": time.Now().Format(time.RFC3339)}
		if c.Query("check") == "db" {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.UserContext())
			}
			if err != nil {
				resp["status"] = "error"
				resp["db_status"] = "error"
				return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
			}
			resp["db_status"] = "ok"
		}
		return c.JSON(resp)
	}
}
