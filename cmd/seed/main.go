package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/config"
	"github.com/careshift-dev/hospital-roster/backend/internal/repository"
	"github.com/careshift-dev/hospital-roster/backend/internal/seed"
	"github.com/careshift-dev/hospital-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var days int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入标准班次, 3: 插入随机班次, 4: 为所有用户随机关联约定, 5: 插入随机排班)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&days, "days", 7, "随机排班覆盖的天数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		shifts := seed.SeedStandardShifts(repo)
		slog.Info("插入标准班次成功", slog.Int("count", len(shifts)))
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的班次数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				shift := utils.GenerateRandomShift()
				if err := repo.CreateShift(shift); err != nil {
					slog.Error("无法插入班次", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入班次成功", slog.Int("count", n-cnt))
		}
	case 4:
		users, err := repo.GetAllActiveUsers()
		if err != nil {
			slog.Error("无法获取在职用户", slog.String("error", err.Error()))
			return
		}

		seed.SeedConventionsForUsers(repo, users)
		slog.Info("关联约定完成", slog.Int("userCount", len(users)))
	case 5:
		if days <= 0 {
			slog.Error("请输入合法的天数")
			return
		}

		admin, err := repo.GetUserByUsername(cfg.InitialAdmin.Username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("初始管理员不存在，请先启动 api 服务完成初始化")
			default:
				slog.Error("无法获取初始管理员", slog.String("error", err.Error()))
			}
			return
		}

		users, err := repo.GetAllActiveUsers()
		if err != nil {
			slog.Error("无法获取在职用户", slog.String("error", err.Error()))
			return
		}

		shifts, err := repo.GetAllShifts()
		if err != nil {
			slog.Error("无法获取班次", slog.String("error", err.Error()))
			return
		}
		if len(shifts) == 0 {
			slog.Error("数据库中没有班次，请先插入班次")
			return
		}

		cnt := seed.SeedAssignments(repo, users, shifts, days, admin.ID)
		slog.Info("插入排班成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
