package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/repository"
	"relief-hub/backend/internal/service"
)

// createAdminCommand 创建首个管理员账号
// 未指定 --password 时生成临时密码并打印
var createAdminCommand = &cli.Command{
	Name:  "create-admin",
	Usage: "创建管理员账号",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "登录用户名"},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "登录密码（至少 8 位）"},
		&cli.StringFlag{Name: "name", Value: "Administrator", Usage: "显示名称"},
	},
	Action: func(c *cli.Context) error {
		_, logger, db, err := bootstrap(c)
		if err != nil {
			return err
		}
		defer closeDB(db)
		defer logger.Sync()

		userSvc := service.NewUserService(repository.NewRepository(db), logger)

		password := c.String("password")
		generated := password == ""
		if generated {
			if password, err = service.GenerateTempPassword(); err != nil {
				return err
			}
		} else if len(password) < 8 {
			return errors.New("密码至少 8 位")
		}

		user, err := userSvc.Create(c.Context, &dto.CreateUserRequest{
			Username: c.String("username"),
			Password: password,
			Name:     c.String("name"),
			Role:     model.RoleAdmin,
		}, nil)
		if err != nil {
			if errors.Is(err, service.ErrUsernameExists) {
				return fmt.Errorf("用户名 %s 已存在", c.String("username"))
			}
			return err
		}

		logger.Info("管理员账号已创建", zap.String("user_id", user.ID), zap.String("username", user.Username))
		if generated {
			fmt.Printf("临时密码: %s\n", password)
		}
		return nil
	},
}
