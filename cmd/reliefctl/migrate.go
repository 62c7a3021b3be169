package main

import (
	"github.com/urfave/cli/v2"

	"relief-hub/backend/pkg/database"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "数据库迁移",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "应用所有未执行的迁移",
			Action: func(c *cli.Context) error {
				_, logger, db, err := bootstrap(c)
				if err != nil {
					return err
				}
				defer closeDB(db)
				defer logger.Sync()

				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return database.RunMigrations(sqlDB, logger)
			},
		},
		{
			Name:  "down",
			Usage: "回滚迁移",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "回滚步数",
					Value: 1,
				},
			},
			Action: func(c *cli.Context) error {
				_, logger, db, err := bootstrap(c)
				if err != nil {
					return err
				}
				defer closeDB(db)
				defer logger.Sync()

				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return database.RollbackMigrations(sqlDB, c.Int("steps"), logger)
			},
		},
	},
}
