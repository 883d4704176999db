package main

import (
	"fmt"
	"os"
)

// @title Weekly Grind API
// @version 1.0
// @description Weekly workout plans with a per-day completion tracker and plan sharing.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
