package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-hub/backend/config"
	"relief-hub/backend/pkg/database"
	applogger "relief-hub/backend/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "reliefctl",
		Usage: "救灾物资平台运维工具",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				EnvVars: []string{"RELIEF_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand,
			createAdminCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "执行失败: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap 加载配置、日志与数据库连接
func bootstrap(c *cli.Context) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
