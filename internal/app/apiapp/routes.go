package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kenogenyi/zikistorez/internal/config"
	authsvc "github.com/kenogenyi/zikistorez/internal/services/auth"
	catalogsvc "github.com/kenogenyi/zikistorez/internal/services/catalog"
	checkoutsvc "github.com/kenogenyi/zikistorez/internal/services/checkout"
	mediasvc "github.com/kenogenyi/zikistorez/internal/services/media"
	paymentsvc "github.com/kenogenyi/zikistorez/internal/services/payments"
	ratesvc "github.com/kenogenyi/zikistorez/internal/services/rate"
	userssvc "github.com/kenogenyi/zikistorez/internal/services/users"
	"github.com/kenogenyi/zikistorez/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	CatalogService  *catalogsvc.Service
	CheckoutService *checkoutsvc.Service
	PaymentService  *paymentsvc.Service
	MediaService    *mediasvc.Service
	UserService     *userssvc.Service
	LoginLimiter    *ratesvc.Limiter
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.LoginLimiter)
	productsHandler := handlers.NewProductsHandler(deps.CatalogService)
	checkoutHandler := handlers.NewCheckoutHandler(deps.CheckoutService)
	webhookHandler := handlers.NewWebhookHandler(deps.PaymentService, deps.Logger)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	meHandler := handlers.NewMeHandler(deps.UserService)
	healthHandler := handlers.NewHealthHandler()

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminRoleMW := RequireRole("admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.With(authMW).Get("/me", meHandler.Get)

	// Storefront surface.
	r.Get("/products", productsHandler.ListPublic)
	r.Get("/products/{id}", productsHandler.Get)
	r.Get("/media/{id}/url", mediaHandler.ImageURL)
	r.With(authMW).Get("/products/{id}/file", mediaHandler.ProductFileURL)
	r.With(authMW).Post("/checkout", checkoutHandler.Create)
	r.With(authMW).Get("/orders/{id}/status", checkoutHandler.OrderStatus)

	r.Post("/webhooks/paystack", webhookHandler.Paystack)

	// Seller dashboard surface.
	r.Route("/seller", func(r chi.Router) {
		r.Use(AdminSurfaceMiddleware, authMW)
		r.Get("/products", productsHandler.ListMine)
		r.Post("/products", productsHandler.Create)
		r.Get("/products/{id}", productsHandler.Get)
		r.Patch("/products/{id}", productsHandler.Update)
		r.Delete("/products/{id}", productsHandler.Delete)
		r.Post("/media", mediaHandler.ImageUpload)
		r.Get("/media", mediaHandler.ListMine)
		r.Get("/media/{id}/url", mediaHandler.ImageURL)
		r.Post("/files", mediaHandler.FileUpload)
	})

	// Admin surface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminSurfaceMiddleware, authMW, adminRoleMW)
		r.Post("/products/{id}/approve", productsHandler.Approve)
		r.Post("/products/{id}/deny", productsHandler.Deny)
	})
}
