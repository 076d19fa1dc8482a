package main

import (
	"log"

	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/controllers"
	"github.com/Aravind-528/StyleKart/routes"
	"github.com/Aravind-528/StyleKart/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Wire up payment providers
	controllers.InitPaymentService(controllers.NewPaymentServiceFromConfig(cfg))

	// Set up router
	router := routes.SetupRouter(cfg.JWTSecret)

	// Add middleware
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
