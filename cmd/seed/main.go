package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/seed"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var maxWorkers int
	var maxPlots int
	var planner string
	var file string
	var seedValue uint64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机排班员, 2: 插入随机排班请求, 3: 导入真实数据并计算排班)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&maxWorkers, "max-workers", 8, "随机排班请求中工人数量的上限")
	flag.IntVar(&maxPlots, "max-plots", 4, "随机排班请求中地块数量的上限")
	flag.StringVar(&planner, "planner", "", "导入真实数据时使用的排班员用户名")
	flag.StringVar(&file, "file", "./internal/seed/data/farm.csv", "真实数据文件路径")
	flag.Uint64Var(&seedValue, "seed", 1, "导入真实数据时使用的随机数种子")
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
			slog.Error("请输入合法的排班员数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				p, err := utils.GenerateRandomPlanner(cfg.Seed.Planner.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机排班员", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreatePlanner(p); err != nil {
					slog.Error("无法插入排班员", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入排班员成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 || maxWorkers <= 0 || maxPlots <= 0 {
			slog.Error("请输入合法的排班请求数量")
		} else {
			// 先获取所有排班员
			planners, err := repo.GetAllPlanners()
			if err != nil {
				slog.Error("无法获取所有排班员", slog.String("error", err.Error()))
				return
			}
			if len(planners) == 0 {
				slog.Error("数据库中没有排班员")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				// 随机选一个排班员
				p := planners[rand.Intn(len(planners))]

				req := utils.GenerateRandomSchedulingRequest(p.ID, maxWorkers, maxPlots)
				req.ID = uuid.NewString()
				if err := repo.CreateSchedulingRequest(req); err != nil {
					slog.Error("无法插入排班请求", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入排班请求成功", slog.Int("count", n-cnt))
		}
	case 3:
		if planner == "" {
			slog.Error("请指定排班员用户名")
			return
		}
		seed.SeedRealData(repo, cfg.SchedulerParameters(seedValue), planner, file)
	default:
		slog.Error("指定的操作非法")
	}
}
