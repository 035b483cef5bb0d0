package main

import "github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/app"

// @title        Sportpass API
// @version      1.0
// @description  Task submission and points engine for the Sportpass portal.
// @BasePath     /
func main() {
	app.Run()
}
