package routes

import (
	"github.com/Aravind-528/StyleKart/controllers"
	"github.com/Aravind-528/StyleKart/middleware"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(sessionSecret string) *gin.Engine {
	router := gin.Default()

	// Setup session middleware with a secure key
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("stylekart", store))

	// API version group
	api := router.Group("/v1")
	{
		api.POST("/checkout", controllers.Checkout)

		paymentGroup := api.Group("/payment")
		{
			paymentGroup.GET("/methods", controllers.GetPaymentMethods)
			paymentGroup.POST("/verify", controllers.VerifyPayment)
			paymentGroup.POST("/validate-vpa", controllers.ValidateVPA)

			webhook := paymentGroup.Group("/webhook")
			{
				webhook.POST("/cashfree", controllers.CashfreeWebhook)
				webhook.POST("/sprintnxt", controllers.SprintNxtWebhook)
			}
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/orders", controllers.AdminListOrders)
			admin.PATCH("/orders/:id/status", controllers.AdminUpdateOrderStatus)
			admin.POST("/qr/static", controllers.AdminGenerateStaticQR)
		}
	}

	return router
}
