package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pickle-storefront/internal/config"
	appmiddleware "pickle-storefront/internal/middleware"
	"pickle-storefront/internal/modules/cart"
	"pickle-storefront/internal/modules/catalog"
	"pickle-storefront/internal/modules/order"
	"pickle-storefront/internal/modules/settings"
	"pickle-storefront/internal/modules/tracking"
	"pickle-storefront/internal/modules/user"
	"pickle-storefront/internal/store"
	"pickle-storefront/pkg/mailer"
	"pickle-storefront/pkg/metrics"
	"pickle-storefront/pkg/notify"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// logMailer stands in for SES when no sender identity is configured, e.g. in
// local development.
type logMailer struct{}

func (logMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	log.Printf("mailer disabled: password reset for %s, token %s", to, token)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	var mail user.Mailer = logMailer{}
	if cfg.MailSender != "" {
		ses, err := mailer.New(ctx, cfg.AWSRegion, cfg.MailSender, cfg.ResetURL)
		if err != nil {
			log.Fatalf("init mailer: %v", err)
		}
		mail = ses
	}

	// State and repositories.
	cartRepo := cart.NewRepository(pool)
	state := store.New(cartRepo)

	settingsRepo := settings.NewRepository(pool)
	settingsSvc := settings.NewService(settingsRepo, state)
	if err := settingsSvc.Load(ctx); err != nil {
		log.Fatalf("load settings: %v", err)
	}

	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo, mail, cfg.JWTSecret)

	catalogRepo := catalog.NewRepository(pool)
	orderRepo := order.NewRepository(pool)

	hub := tracking.NewHub()
	trackingRepo := tracking.NewRepository(pool)
	trackingSvc := tracking.NewService(trackingRepo, hub, 0)

	notifier := notify.NewWhatsApp(cfg.StoreName, cfg.OrdersURL)
	orderSvc := order.NewService(orderRepo, state, userSvc, notifier, trackingSvc)
	trackingSvc.BindOrders(orderSvc)

	catalogSvc := catalog.NewService(catalogRepo, orderSvc, userSvc)
	cartSvc := cart.NewService(state, cartRepo, catalogSvc)

	observer := tracking.NewObserver(hub, trackingRepo)
	defer observer.Stop()

	// Handlers.
	userHandler := user.NewHandler(userSvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	cartHandler := cart.NewHandler(cartSvc)
	orderHandler := order.NewHandler(orderSvc)
	trackingHandler := tracking.NewHandler(trackingSvc, observer)
	settingsHandler := settings.NewHandler(settingsSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")

	// Public storefront.
	api.POST("/auth/signup", userHandler.SignUp)
	api.POST("/auth/login", userHandler.Login)
	api.POST("/auth/forgot-password", userHandler.ForgotPassword)
	api.POST("/auth/reset-password", userHandler.ResetPassword)

	api.GET("/products", catalogHandler.ListProducts)
	api.GET("/products/:productId", catalogHandler.GetProduct)
	api.GET("/products/:productId/reviews", catalogHandler.ListReviews)
	api.GET("/combos", catalogHandler.ListCombos)
	api.GET("/combos/:comboId", catalogHandler.GetCombo)
	api.GET("/settings", settingsHandler.Get)

	// Customer order tracking page; reached through a shared link, no login.
	api.GET("/orders/:orderId/location", trackingHandler.GetLocation)
	api.GET("/orders/:orderId/location/stream", trackingHandler.StreamLocation)

	// Driver page, reached through a per-order link handed out by the admin.
	driver := api.Group("/driver/orders/:orderId")
	driver.POST("/position", trackingHandler.ReportPosition)
	driver.POST("/start", trackingHandler.StartTracking)
	driver.POST("/stop", trackingHandler.StopTracking)
	driver.POST("/delivered", trackingHandler.Delivered)

	// Signed-in customers.
	auth := api.Group("", appmiddleware.JWT(cfg.JWTSecret))
	auth.GET("/users/me", userHandler.Me)
	auth.PUT("/users/me", userHandler.UpdateProfile)
	auth.GET("/users/me/addresses", userHandler.ListAddresses)
	auth.POST("/users/me/addresses", userHandler.AddAddress)
	auth.PUT("/users/me/addresses/:addressId", userHandler.UpdateAddress)
	auth.DELETE("/users/me/addresses/:addressId", userHandler.DeleteAddress)
	auth.POST("/users/me/addresses/:addressId/default", userHandler.SetDefaultAddress)

	auth.GET("/cart", cartHandler.GetCart)
	auth.POST("/cart", cartHandler.AddToCart)
	auth.PUT("/cart", cartHandler.UpdateQuantity)
	auth.DELETE("/cart", cartHandler.ClearCart)
	auth.DELETE("/cart/:productId/:weight", cartHandler.RemoveFromCart)
	auth.POST("/cart/coupon", cartHandler.ApplyCoupon)
	auth.DELETE("/cart/coupon", cartHandler.RemoveCoupon)

	auth.POST("/orders", orderHandler.Checkout)
	auth.GET("/orders", orderHandler.GetMyOrders)
	auth.GET("/orders/:orderId", orderHandler.GetOrder)
	auth.GET("/orders/:orderId/invoice", orderHandler.GetInvoice)
	auth.GET("/orders/:orderId/payment-links", orderHandler.GetPaymentLinks)

	auth.POST("/products/:productId/reviews", catalogHandler.AddReview)

	// Admin console.
	admin := api.Group("/admin", appmiddleware.JWT(cfg.JWTSecret), appmiddleware.AdminOnly)
	admin.POST("/products", catalogHandler.CreateProduct)
	admin.PUT("/products/:productId", catalogHandler.UpdateProduct)
	admin.DELETE("/products/:productId", catalogHandler.DeleteProduct)
	admin.GET("/combos", catalogHandler.ListAllCombos)
	admin.POST("/combos", catalogHandler.CreateCombo)
	admin.PUT("/combos/:comboId", catalogHandler.UpdateCombo)
	admin.DELETE("/combos/:comboId", catalogHandler.DeleteCombo)

	admin.GET("/coupons", cartHandler.ListCoupons)
	admin.POST("/coupons", cartHandler.CreateCoupon)
	admin.PATCH("/coupons/:code", cartHandler.ToggleCoupon)

	admin.GET("/orders", orderHandler.ListAllOrders)
	admin.POST("/orders/:orderId/approve-payment", orderHandler.ApprovePayment)
	admin.POST("/orders/:orderId/reject-payment", orderHandler.RejectPayment)
	admin.POST("/orders/:orderId/tracking", orderHandler.AssignTracking)
	admin.PATCH("/orders/:orderId/status", orderHandler.UpdateStatus)

	admin.GET("/deliveries", trackingHandler.ActiveDeliveries)
	admin.GET("/deliveries/stream", trackingHandler.StreamDeliveries)

	admin.PUT("/settings", settingsHandler.Update)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	state.Flush()
}
