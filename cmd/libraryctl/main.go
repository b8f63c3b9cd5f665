package main

import (
	"os"

	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/config"
	dbpkg "github.com/kassemshdy/aspire-library/internal/db"
)

func main() {
	cfg := config.Load()

	root := newRootCmd(cfg, func() (*gorm.DB, error) {
		return dbpkg.Open(cfg)
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
