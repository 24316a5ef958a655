package main

import (
	"log"

	"github.com/taskdeck/taskdeck/application"

	_ "github.com/taskdeck/taskdeck/internal/api"          // route registration
	_ "github.com/taskdeck/taskdeck/internal/config"       // biz_config section binding
	_ "github.com/taskdeck/taskdeck/internal/registry_ext" // component builders
)

var Version = "v0.1.0"

func main() {
	app := application.GetApp()
	if err := app.Run(); err != nil {
		log.Fatalf("app exited with error: %v", err)
	}
}
