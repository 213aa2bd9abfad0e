package http

import (
	"net/http"

	"makerspace-booking/internal/delivery/http/handler"
	"makerspace-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router          *mux.Router
	log             *logrus.Logger
	bookingHandler  *handler.BookingHandler
	eventHandler    *handler.EventHandler
	workshopHandler *handler.WorkshopHandler
	catalogHandler  *handler.CatalogHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	log *logrus.Logger,
	bookingHandler *handler.BookingHandler,
	eventHandler *handler.EventHandler,
	workshopHandler *handler.WorkshopHandler,
	catalogHandler *handler.CatalogHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		log:             log,
		bookingHandler:  bookingHandler,
		eventHandler:    eventHandler,
		workshopHandler: workshopHandler,
		catalogHandler:  catalogHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

// Setup registers every route. CORS sits outside the mux so OPTIONS
// preflights are answered without a matching route.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Catalog (public)
	api.HandleFunc("/categories", r.catalogHandler.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/services", r.catalogHandler.GetServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", r.catalogHandler.GetService).Methods(http.MethodGet)
	api.HandleFunc("/events", r.eventHandler.GetEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", r.eventHandler.GetEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}/availability", r.eventHandler.GetAvailability).Methods(http.MethodGet)
	api.HandleFunc("/workshops", r.workshopHandler.GetWorkshops).Methods(http.MethodGet)
	api.HandleFunc("/workshops/{id}", r.workshopHandler.GetWorkshop).Methods(http.MethodGet)
	api.HandleFunc("/workshops/{id}/availability", r.workshopHandler.GetAvailability).Methods(http.MethodGet)

	// Bookings (authenticated; ownership is checked per booking)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.HandleFunc("", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	bookings.HandleFunc("", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.UpdateBooking).Methods(http.MethodPut)
	bookings.HandleFunc("/{id}", r.bookingHandler.DeleteBooking).Methods(http.MethodDelete)
	bookings.HandleFunc("/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPost)

	// Session management (host or admin; ownership is checked per session)
	sessions := api.NewRoute().Subrouter()
	sessions.Use(r.authMiddleware.Authenticate)
	sessions.Use(middleware.RequireHostOrAdmin)
	sessions.HandleFunc("/events", r.eventHandler.CreateEvent).Methods(http.MethodPost)
	sessions.HandleFunc("/events/{id}", r.eventHandler.UpdateEvent).Methods(http.MethodPut)
	sessions.HandleFunc("/events/{id}", r.eventHandler.DeleteEvent).Methods(http.MethodDelete)
	sessions.HandleFunc("/workshops", r.workshopHandler.CreateWorkshop).Methods(http.MethodPost)
	sessions.HandleFunc("/workshops/{id}", r.workshopHandler.UpdateWorkshop).Methods(http.MethodPut)
	sessions.HandleFunc("/workshops/{id}", r.workshopHandler.DeleteWorkshop).Methods(http.MethodDelete)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/bookings", r.bookingHandler.GetAllBookings).Methods(http.MethodGet)

	admin.HandleFunc("/categories", r.catalogHandler.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id}", r.catalogHandler.DeleteCategory).Methods(http.MethodDelete)

	admin.HandleFunc("/services", r.catalogHandler.CreateService).Methods(http.MethodPost)
	admin.HandleFunc("/services/{id}", r.catalogHandler.UpdateService).Methods(http.MethodPut)
	admin.HandleFunc("/services/{id}", r.catalogHandler.DeleteService).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return middleware.RequestLogger(r.log)(r.corsMiddleware.Handle(r.router))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
