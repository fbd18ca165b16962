// Package ravetracker предоставляет маршруты для основного приложения.
package ravetracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/auth/generateinvite"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/auth/requestorganizer"
	eventattend "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/attend"
	eventcomment "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/comment"
	eventcreate "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/create"
	eventinterest "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/interest"
	eventlist "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/list"
	eventread "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/read"
	eventremove "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/remove"
	eventupdate "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/event/update"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/invite/useinvite"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/invite/validateinvite"
	reportaction "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/report/action"
	reportcreate "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/report/create"
	reportlist "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/report/list"
	reportread "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/report/read"
	reportstats "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/report/stats"
	reportupdate "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/report/update"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/couponapply"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/couponcreate"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/couponvalidate"
	subscriptioncurrent "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/current"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/plancreate"
	subscriptionplans "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/plans"
	subscriptionupgrade "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/subscription/upgrade"
	supportassign "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/assign"
	supportcategories "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/categories"
	supportrespond "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/respond"
	supportstats "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/stats"
	supportstatus "github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/status"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/ticketcreate"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/ticketlist"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/support/ticketread"
	"github.com/magabrotheeeer/rave-tracker/internal/http/handlers/user/publicprofile"
	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/rave-tracker/internal/services/auth"
	eventservice "github.com/magabrotheeeer/rave-tracker/internal/services/event"
	reportservice "github.com/magabrotheeeer/rave-tracker/internal/services/report"
	subscriptionservice "github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
	supportservice "github.com/magabrotheeeer/rave-tracker/internal/services/support"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	authService *authservice.AuthService,
	eventService *eventservice.EventService,
	subscriptionService *subscriptionservice.SubscriptionService,
	reportService *reportservice.ReportService,
	supportService *supportservice.SupportService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/invites/validate", validateinvite.New(logger, authService).ServeHTTP)
		r.Get("/users/{uid}", publicprofile.New(logger, authService).ServeHTTP)
		r.Get("/subscriptions/plans", subscriptionplans.New(logger, subscriptionService).ServeHTTP)
		r.Get("/support/categories", supportcategories.New(logger, supportService).ServeHTTP)

		// Чтение афиши доступно и без токена, но авторизованные
		// пользователи видят свои скрытые события
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(jwtMaker))
			r.Get("/events", eventlist.New(logger, eventService).ServeHTTP)
			r.Get("/events/{id}", eventread.New(logger, eventService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/profile", profile.New(logger, authService).ServeHTTP)
			r.Post("/auth/request-organizer", requestorganizer.New(logger, authService).ServeHTTP)
			r.Post("/auth/generate-invite", generateinvite.New(logger, authService).ServeHTTP)
			r.Post("/invites/use", useinvite.New(logger, authService).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, "organizer", "moderator", "admin"))
				r.Post("/events", eventcreate.New(logger, eventService).ServeHTTP)
			})
			r.Put("/events/{id}", eventupdate.New(logger, eventService).ServeHTTP)
			r.Delete("/events/{id}", eventremove.New(logger, eventService).ServeHTTP)
			r.Post("/events/{id}/interest", eventinterest.New(logger, eventService).ServeHTTP)
			r.Post("/events/{id}/attend", eventattend.New(logger, eventService).ServeHTTP)
			r.Post("/events/{id}/comments", eventcomment.New(logger, eventService).ServeHTTP)

			r.Get("/subscriptions/current", subscriptioncurrent.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/upgrade", subscriptionupgrade.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/coupon/validate", couponvalidate.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/coupon/apply", couponapply.New(logger, subscriptionService).ServeHTTP)

			r.Post("/reports", reportcreate.New(logger, reportService).ServeHTTP)

			r.Post("/support/tickets", ticketcreate.New(logger, supportService).ServeHTTP)
			r.Get("/support/tickets", ticketlist.New(logger, supportService).ServeHTTP)
			r.Get("/support/tickets/{id}", ticketread.New(logger, supportService).ServeHTTP)
			r.Post("/support/tickets/{id}/respond", supportrespond.New(logger, supportService).ServeHTTP)

			// Конечные точки модерации
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, "moderator", "admin"))
				r.Get("/reports", reportlist.New(logger, reportService).ServeHTTP)
				r.Get("/reports/stats", reportstats.New(logger, reportService).ServeHTTP)
				r.Get("/reports/{id}", reportread.New(logger, reportService).ServeHTTP)
				r.Put("/reports/{id}", reportupdate.New(logger, reportService).ServeHTTP)
				r.Post("/reports/{id}/action", reportaction.New(logger, reportService).ServeHTTP)

				r.Get("/support/stats", supportstats.New(logger, supportService).ServeHTTP)
				r.Put("/support/tickets/{id}/status", supportstatus.New(logger, supportService).ServeHTTP)
				r.Put("/support/tickets/{id}/assign", supportassign.New(logger, supportService).ServeHTTP)
			})

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, "admin"))
				r.Post("/admin/plans", plancreate.New(logger, subscriptionService).ServeHTTP)
				r.Post("/admin/coupons", couponcreate.New(logger, subscriptionService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
