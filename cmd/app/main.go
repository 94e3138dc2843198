package main

import (
	"github.com/Klaiveft/What2Watch/internal/app"
	"github.com/Klaiveft/What2Watch/internal/config"
)

// @title What2Watch API
// @version 1.0
// @description Movie night rooms: propose, vote, get one winner.
// @BasePath /api/v1
// @securityDefinitions.apikey UserToken
// @in header
// @name X-user-token
func main() {
	app.Go(config.Load())
}
