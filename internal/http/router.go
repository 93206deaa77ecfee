package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/appointment"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/catalog"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/inventory"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/navigation"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/profile"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/provider"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/ratelimit"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/report"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/respond"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// Dependencies are the shared resources the router wires into every domain.
// Metrics and Logger must be non-nil.
type Dependencies struct {
	DB          *sql.DB
	Verifier    auth.TokenVerifier
	Permissions auth.Permissions
	Publisher   messaging.PublisherInterface
	Cache       cache.Cache
	CacheTTL    time.Duration
	Limiter     ratelimit.Limiter
	Rules       appointment.Rules
	Metrics     *telemetry.Metrics
	Logger      *zap.Logger
	ServiceName string
}

type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// SetupRouter initializes all routes for the application
func SetupRouter(d Dependencies) *mux.Router {
	logger := d.Logger
	if d.Cache == nil {
		d.Cache = cache.NewMemory(d.CacheTTL)
	}

	clinicService := clinic.NewService(clinic.NewRepository(d.DB),
		cache.Instrument(d.Cache, "clinics", d.Metrics), d.CacheTTL, d.Publisher, d.Metrics, logger.Named("clinic"))
	clinicHandler := clinic.NewHandler(clinicService, logger.Named("clinic"))

	catalogService := catalog.NewService(catalog.NewRepository(d.DB),
		cache.Instrument(d.Cache, "catalog", d.Metrics), d.CacheTTL, logger.Named("catalog"))
	catalogHandler := catalog.NewHandler(catalogService, logger.Named("catalog"))

	providerService := provider.NewService(provider.NewRepository(d.DB), d.Publisher, logger.Named("provider"))
	providerHandler := provider.NewHandler(providerService, logger.Named("provider"))

	appointmentService := appointment.NewService(appointment.NewRepository(d.DB),
		d.Rules, d.Limiter, d.Publisher, d.Metrics, logger.Named("appointment"))
	appointmentHandler := appointment.NewHandler(appointmentService, logger.Named("appointment"))

	inventoryService := inventory.NewService(inventory.NewRepository(d.DB), d.Publisher, d.Metrics, logger.Named("inventory"))
	inventoryHandler := inventory.NewHandler(inventoryService, logger.Named("inventory"))

	profileService := profile.NewService(profile.NewRepository(d.DB), logger.Named("profile"))
	profileHandler := profile.NewHandler(profileService, logger.Named("profile"))

	reportService := report.NewService(report.NewRepository(d.DB),
		cache.Instrument(d.Cache, "reports", d.Metrics), d.CacheTTL, logger.Named("report"))
	reportHandler := report.NewHandler(reportService, logger.Named("report"))

	navigationHandler := navigation.NewHandler(navigation.NewService(clinicService, logger.Named("navigation")), logger.Named("navigation"))

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(d.ServiceName))
	r.Use(RequestLogging(logger.Named("http"), d.Metrics))

	r.HandleFunc("/health", health(d.DB, d.ServiceName)).Methods(http.MethodGet)

	authn := auth.MiddlewareWithMetrics(d.Verifier, d.Metrics, logger.Named("auth"))
	handle := func(path, method, permission string, h http.HandlerFunc) {
		r.Handle(path,
			authn(
				auth.RequirePermissionWithMetrics(permission, d.Permissions, d.Metrics, logger.Named("auth"))(h),
			),
		).Methods(method)
	}

	// Clinics. Literal paths are registered before {id}.
	handle("/clinics", http.MethodGet, "clinic:view", clinicHandler.ListClinics)
	handle("/clinics/nearby", http.MethodGet, "clinic:view", clinicHandler.FindNearby)
	handle("/clinics", http.MethodPost, "clinic:create", clinicHandler.CreateClinic)
	handle("/clinics/{id}", http.MethodGet, "clinic:view", clinicHandler.GetClinic)
	handle("/clinics/{id}", http.MethodPut, "clinic:update", clinicHandler.UpdateClinic)
	handle("/clinics/{id}", http.MethodDelete, "clinic:delete", clinicHandler.DeleteClinic)
	handle("/clinics/{id}/route", http.MethodGet, "navigation:view", navigationHandler.RouteToClinic)

	// Providers
	handle("/providers", http.MethodGet, "provider:view", providerHandler.ListProviders)
	handle("/providers", http.MethodPost, "provider:create", providerHandler.CreateProvider)
	handle("/providers/{id}", http.MethodGet, "provider:view", providerHandler.GetProvider)
	handle("/providers/{id}", http.MethodPut, "provider:update", providerHandler.UpdateProvider)
	handle("/providers/{id}", http.MethodDelete, "provider:delete", providerHandler.DeleteProvider)
	handle("/providers/{id}/services", http.MethodPut, "provider:update", providerHandler.SetServices)
	handle("/providers/{id}/working-hours", http.MethodGet, "provider:view", providerHandler.GetWorkingHours)
	handle("/providers/{id}/working-hours", http.MethodPut, "provider:update", providerHandler.SetWorkingHours)
	handle("/providers/{id}/availability", http.MethodGet, "provider:view", appointmentHandler.Availability)

	// Services offered by clinics
	handle("/services", http.MethodGet, "service:view", catalogHandler.ListServices)
	handle("/services/categories", http.MethodGet, "service:view", catalogHandler.ListCategories)
	handle("/services", http.MethodPost, "service:create", catalogHandler.CreateService)
	handle("/services/{id}", http.MethodGet, "service:view", catalogHandler.GetService)
	handle("/services/{id}", http.MethodPut, "service:update", catalogHandler.UpdateService)
	handle("/services/{id}", http.MethodDelete, "service:delete", catalogHandler.DeleteService)

	// Appointments
	handle("/appointments", http.MethodGet, "appointment:view", appointmentHandler.ListAppointments)
	handle("/appointments", http.MethodPost, "appointment:book", appointmentHandler.BookAppointment)
	handle("/appointments/{id}", http.MethodGet, "appointment:view", appointmentHandler.GetAppointment)
	handle("/appointments/{id}/confirm", http.MethodPost, "appointment:manage", appointmentHandler.ConfirmAppointment)
	handle("/appointments/{id}/complete", http.MethodPost, "appointment:manage", appointmentHandler.CompleteAppointment)
	handle("/appointments/{id}/no-show", http.MethodPost, "appointment:manage", appointmentHandler.MarkNoShow)
	handle("/appointments/{id}/cancel", http.MethodPost, "appointment:cancel", appointmentHandler.CancelAppointment)
	handle("/appointments/{id}/reschedule", http.MethodPost, "appointment:book", appointmentHandler.RescheduleAppointment)

	// Inventory
	handle("/inventory", http.MethodGet, "inventory:view", inventoryHandler.ListItems)
	handle("/inventory/low-stock", http.MethodGet, "inventory:view", inventoryHandler.ListLowStock)
	handle("/inventory", http.MethodPost, "inventory:create", inventoryHandler.CreateItem)
	handle("/inventory/{id}", http.MethodGet, "inventory:view", inventoryHandler.GetItem)
	handle("/inventory/{id}", http.MethodPut, "inventory:update", inventoryHandler.UpdateItem)
	handle("/inventory/{id}", http.MethodDelete, "inventory:delete", inventoryHandler.DeleteItem)
	handle("/inventory/{id}/adjust", http.MethodPost, "inventory:adjust", inventoryHandler.AdjustStock)

	// Profiles
	handle("/profiles/me", http.MethodGet, "profile:self", profileHandler.GetMyProfile)
	handle("/profiles/me", http.MethodPut, "profile:self", profileHandler.UpsertMyProfile)
	handle("/profiles", http.MethodGet, "profile:view", profileHandler.ListProfiles)
	handle("/profiles/{id}", http.MethodGet, "profile:view", profileHandler.GetProfile)

	// Reports
	handle("/reports/appointments", http.MethodGet, "report:view", reportHandler.AppointmentSummary)
	handle("/reports/revenue", http.MethodGet, "report:view", reportHandler.RevenueByClinic)
	handle("/reports/top-services", http.MethodGet, "report:view", reportHandler.TopServices)
	handle("/reports/inventory-valuation", http.MethodGet, "report:view", reportHandler.InventoryValuation)

	handle("/navigation/route", http.MethodGet, "navigation:view", navigationHandler.Route)

	return r
}

func health(db *sql.DB, service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Service: service, Database: "skipped"}
		if db == nil {
			respond.JSON(w, http.StatusOK, resp)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "ok"
		respond.JSON(w, http.StatusOK, resp)
	}
}
