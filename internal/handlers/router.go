package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmikh/workmarket/internal/middleware"
	"github.com/dmikh/workmarket/internal/models"
	"github.com/dmikh/workmarket/internal/service"
	"github.com/dmikh/workmarket/internal/ws"
)

type Handler struct {
	userService       service.UserService
	jobService        service.JobService
	paymentService    service.PaymentService
	withdrawalService service.WithdrawalService
	chatService       service.ChatService
	hub               *ws.Hub
	secretKey         string
}

func NewHandler(
	userService service.UserService,
	jobService service.JobService,
	paymentService service.PaymentService,
	withdrawalService service.WithdrawalService,
	chatService service.ChatService,
	hub *ws.Hub,
	secretKey string,
) *Handler {
	return &Handler{
		userService:       userService,
		jobService:        jobService,
		paymentService:    paymentService,
		withdrawalService: withdrawalService,
		chatService:       chatService,
		hub:               hub,
		secretKey:         secretKey,
	}
}

func NewRouter(handler *Handler, secretKey string, limiter *middleware.ClientLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.WithLogging())
	r.Use(middleware.WithGzip())

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid URL format", http.StatusNotFound)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", handler.Register)
			r.Post("/login", handler.Login)
		})

		r.Get("/ws", handler.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(secretKey))
			// after JWT so authenticated traffic is throttled per user
			r.Use(middleware.WithRateLimit(limiter))

			r.Route("/jobs", func(r chi.Router) {
				r.With(middleware.RequireRole(models.RoleBusiness)).Post("/", handler.CreateJob)
				r.Get("/", handler.ListJobs)
				r.Get("/{id}", handler.GetJob)
			})

			r.Route("/payments", func(r chi.Router) {
				r.With(middleware.RequireRole(models.RoleBusiness)).Post("/create", handler.CreatePayment)
				r.Post("/{id}/confirm", handler.ConfirmPayment)
				r.Get("/history", handler.PaymentHistory)
				r.With(middleware.RequireRole(models.RoleWorker)).Post("/withdraw", handler.RequestWithdrawal)
				r.With(middleware.RequireRole(models.RoleWorker)).Get("/withdrawals", handler.ListWithdrawals)
				r.Get("/wallet", handler.GetWallet)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Put("/withdrawals/{id}/process", handler.ProcessWithdrawal)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", handler.ListConversations)
				r.Post("/", handler.StartConversation)
				r.Get("/{id}/messages", handler.ListMessages)
				r.Post("/{id}/messages", handler.SendMessage)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", handler.ListNotifications)
				r.Post("/read", handler.MarkNotificationsRead)
			})
		})
	})

	return r
}
