package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/config"
	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/auth"
	"github.com/xsantcastx/xsantcastx/internal/domain"
	"github.com/xsantcastx/xsantcastx/internal/handler"
	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/repository"
	"github.com/xsantcastx/xsantcastx/internal/service"
	"github.com/xsantcastx/xsantcastx/internal/ws"
	"github.com/xsantcastx/xsantcastx/pkg/mailer"
)

// Deps are the external collaborators built in main. PayPal, Stripe, Mailer
// and AppCheck stay nil when not configured.
type Deps struct {
	Donations repository.DonationStore
	PayPal    service.PayPalGateway
	Stripe    service.StripeGateway
	Mailer    mailer.Sender
	Verifier  auth.Verifier
	AppCheck  auth.AppCheckVerifier
	Limiter   *middleware.InMemoryRateLimiter
	Feed      *ws.FeedHub
}

func Setup(cfg *config.Config, deps Deps, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)
	r.NoRoute(func(c *gin.Context) {
		middleware.Fail(c, apperr.NotFoundErr("Not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		middleware.Fail(c, apperr.UnimplementedErr("Method not allowed"))
	})

	// Client-facing routes only; the Stripe webhook is registered on r.
	api := r.Group("")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimit(deps.Limiter))
	}

	// Services
	var publisher service.DonationPublisher
	if deps.Feed != nil {
		publisher = deps.Feed
	}
	donationSvc := service.NewDonationService(deps.Donations, publisher, cfg.Store.UniqueReference, log)
	paypalSvc := service.NewPayPalService(deps.PayPal, donationSvc, log)
	stripeSvc := service.NewStripeService(deps.Stripe, service.StripeOptions{
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		SiteName:      cfg.Server.SiteName,
	}, donationSvc, log)
	contactSvc := service.NewContactService(deps.Mailer, service.ContactOptions{
		From:     mailer.Address{Email: cfg.Email.FromEmail, Name: cfg.Email.FromName},
		To:       mailer.Address{Email: cfg.Email.ContactTo, Name: cfg.Email.ContactToName},
		SiteName: cfg.Server.SiteName,
	}, log)

	// Handlers
	contactHandler := handler.NewContactHandler(contactSvc)
	paypalHandler := handler.NewPayPalHandler(paypalSvc)
	stripeHandler := handler.NewStripeHandler(stripeSvc)
	webhookHandler := handler.NewStripeWebhookHandler(stripeSvc)
	paypalStats := handler.NewStatsHandler(donationSvc, domain.DonationTypePayPal)
	stripeStats := handler.NewStatsHandler(donationSvc, domain.DonationTypeStripe)

	appCheck := middleware.AppCheck(deps.AppCheck)
	optionalAuth := middleware.OptionalAuth(deps.Verifier)
	statsAuth := []gin.HandlerFunc{appCheck, middleware.AuthRequired(deps.Verifier)}
	if cfg.Auth.StatsRequireAdmin {
		statsAuth = append(statsAuth, middleware.AdminRequired())
	}
	stats := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, statsAuth...), h)
	}
	statsMethods := []string{http.MethodGet, http.MethodPost}

	api.GET("/healthz", handler.Health)
	api.POST("/contact/send", contactHandler.Send)

	paypal := api.Group("/paypal")
	{
		paypal.POST("/processPayment", appCheck, optionalAuth, paypalHandler.ProcessPayment)
		paypal.Match(statsMethods, "/getStats", stats(paypalStats.Get)...)
	}

	stripe := api.Group("/stripe")
	{
		stripe.POST("/createPaymentIntent", appCheck, optionalAuth, stripeHandler.CreatePaymentIntent)
		stripe.POST("/confirmPayment", appCheck, optionalAuth, stripeHandler.ConfirmPayment)
		stripe.POST("/createCheckoutSession", appCheck, optionalAuth, stripeHandler.CreateCheckoutSession)
		stripe.Match(statsMethods, "/getStats", stats(stripeStats.Get)...)
	}
	r.POST("/stripe/handleWebhook", webhookHandler.Handle)

	if deps.Feed != nil {
		api.GET("/ws/donations", ws.UpgradeFeed(deps.Feed, ws.NewUpgrader(cfg.Server.AllowedOrigins), log))
	}

	return r
}
