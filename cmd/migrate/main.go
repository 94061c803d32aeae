package main

import (
	"flag"
	"log"

	"github.com/emailvalidation9-a11y/backend/internal/orm"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

// 只跑一次建表迁移就退出
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := orm.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	defer db.Close()

	log.Println("migration complete")
}
