// Package main is the entry point for the ProxyScope API server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	api "github.com/kart-io/proxyscope/internal/api"
)

func main() {
	api.NewApp().Run()
}
