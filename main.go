package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"warehouse-app/config"
	"warehouse-app/routes"
)

func main() {
	if err := config.InitLogger(os.Getenv("APP_MODE")); err != nil {
		panic(err)
	}
	defer config.Log.Sync()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./warehouse.db"
	}
	if err := config.InitDB(dbPath); err != nil {
		config.Log.Fatalw("Failed to initialize database", "path", dbPath, "error", err)
	}

	router := gin.Default()
	routes.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	config.Log.Infow("Starting warehouse server", "port", port)
	if err := router.Run(":" + port); err != nil {
		config.Log.Fatalw("Failed to run server", "error", err)
	}
}
