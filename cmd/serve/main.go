package main

import (
	"net/http"

	"arxiv-daily/archive"
	"arxiv-daily/cmd/serve/router"
	"arxiv-daily/config"
)

// serve is a read-only preview of the file archive, for checking the
// generated data before the external publisher picks up the site dir.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	store := archive.NewFileStore(cfg.Storage.DataDir)
	r := router.New(store)

	config.Logger.Infof("preview server listening on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
		config.Logger.Errorf("server stopped: %v", err)
	}
}
