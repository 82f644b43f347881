package main

import (
	"log"

	"FuelCore/CronJobs"
	"FuelCore/FiberConfig"
	"FuelCore/Models"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	Models.Connect()

	tankWatcher := CronJobs.NewTankWatcher(Models.DB, true)
	if err := tankWatcher.Start(); err != nil {
		log.Printf("Failed to start tank watcher: %v", err)
	}
	defer tankWatcher.Stop()

	FiberConfig.FiberConfig()
}
