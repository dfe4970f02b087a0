// @title           Fitshop API
// @version         1.0
// @description     Shop, cart, payments and media for the fitness store.
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

package main

import "fitshop_backend/internal/app"

func main() {
	app.Run()
}
