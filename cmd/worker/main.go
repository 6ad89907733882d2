// Package main is the entry point for the ProxyScope worker.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	worker "github.com/kart-io/proxyscope/internal/worker"
)

func main() {
	worker.NewApp().Run()
}
