package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

type worker struct {
	cfg    *config.Config
	repo   *repository.Repository
	ch     *amqp.Channel
	logger *slog.Logger
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	for _, queue := range []string{cfg.Queue.Schedule, cfg.Queue.Email} {
		if _, err := ch.QueueDeclare(
			queue, // 队列名称
			true,  // 是否持久化
			false, // 是否自动删除
			false, // 是否独占
			false, // 是否不等待
			nil,   // 额外参数
		); err != nil {
			logger.Error("无法声明队列", "queue", queue, "error", err)
			return
		}
	}

	// 排班是 CPU 密集型任务，每次只取一条消息
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	msgs, err := ch.Consume(
		cfg.Queue.Schedule, // 队列
		"",                 // 消费者标识
		false,              // 是否自动确认
		false,              // 是否独占队列
		false,              // no-local
		false,              // 是否不等待
		nil,                // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	w := &worker{cfg: cfg, repo: repo, ch: ch, logger: logger}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}

				job := domain.ScheduleJobMessage{}
				if err := json.Unmarshal(msg.Body, &job); err != nil {
					logger.Error("排班消息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := w.process(ctx, job.RequestID); err != nil {
					logger.Error("排班任务处理失败", "request", job.RequestID, "error", err)
					// 数据库或队列暂时不可用时重新入队
					_ = msg.Nack(false, !errors.Is(err, sql.ErrNoRows))
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待排班任务...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 schedule worker...")
	cancel()
	wg.Wait()
	slog.Info("schedule worker 已成功关闭")
}

// process 计算一个排班请求并保存结果；排班本身失败时记录在请求状态中，不返回错误
func (w *worker) process(ctx context.Context, requestID string) error {
	req, err := w.repo.GetSchedulingRequestByID(requestID)
	if err != nil {
		return err
	}

	req.Status = domain.RequestStatusRunning
	req.Message = ""
	if err := w.repo.UpdateSchedulingRequestStatus(req); err != nil {
		return err
	}

	w.logger.Info("开始排班", "request", req.ID, "workers", len(req.Productivity), "plots", len(req.Slopes), "seed", req.Seed)

	outcome, scheduleErr := w.schedule(ctx, req)
	switch {
	case scheduleErr != nil:
		req.Status = domain.RequestStatusFailed
		req.Message = scheduleErr.Error()
	case !outcome.Feasible:
		req.Status = domain.RequestStatusInfeasible
		req.Message = outcome.Message
	default:
		req.Status = domain.RequestStatusFinished
	}

	if outcome != nil {
		if err := w.repo.InsertSchedulingResult(domain.NewSchedulingResult(req.ID, outcome)); err != nil {
			return err
		}
	}

	if err := w.repo.UpdateSchedulingRequestStatus(req); err != nil {
		return err
	}

	w.logger.Info("排班结束", "request", req.ID, "status", req.Status)

	return w.notify(req)
}

func (w *worker) schedule(ctx context.Context, req *domain.SchedulingRequest) (*domain.SchedulingOutcome, error) {
	s, err := scheduler.New(w.cfg.SchedulerParameters(req.Seed), req.Productivity, req.Slopes, req.Quotas)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(w.cfg.Optimizer.Timeout)*time.Second)
	defer cancel()

	outcome, err := s.WithLogger(w.logger).WithPolicy(scheduler.PolicyByName(w.cfg.Optimizer.Policy)).Schedule(ctx)
	switch {
	case err == nil:
		return outcome, nil
	case errors.Is(err, context.DeadlineExceeded) && outcome != nil:
		// 超时后使用已经得到的档案
		w.logger.Warn("排班超时，使用当前结果", "request", req.ID)
		return outcome, nil
	default:
		return nil, err
	}
}

// notify 通过邮件通知提交者
func (w *worker) notify(req *domain.SchedulingRequest) error {
	if req.Status == domain.RequestStatusFailed {
		return nil
	}

	planner, err := w.repo.GetPlannerByID(req.PlannerID)
	if err != nil {
		return err
	}

	mailMessage := domain.MailMessage{To: planner.Email}
	if req.Status == domain.RequestStatusFinished {
		mailMessage.Type = "schedule_ready"
		mailMessage.Data = domain.ScheduleReadyMailData{
			FullName:  planner.FullName,
			RequestID: req.ID,
			Workers:   len(req.Productivity),
			Plots:     len(req.Slopes),
		}
	} else {
		mailMessage.Type = "schedule_infeasible"
		mailMessage.Data = domain.ScheduleInfeasibleMailData{
			FullName:  planner.FullName,
			RequestID: req.ID,
			Message:   req.Message,
		}
	}

	body, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(w.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return w.ch.PublishWithContext(
		ctx,
		"",
		w.cfg.Queue.Email,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
