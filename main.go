package main

import (
	"log"

	"github.com/alexisbanda/invercorp-backend/app"
	"github.com/alexisbanda/invercorp-backend/config"
	_ "github.com/alexisbanda/invercorp-backend/docs"
)

// @title INVERCORP Portal Backend API
// @version 0.1
// @description Backend API for the INVERCORP microcredit and programmed-savings portal.
// @contact.name INVERCORP
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	if err := config.LoadENV(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	if err := app.SetupAndRunApp(); err != nil {
		panic(err)
	}
}
