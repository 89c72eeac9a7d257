package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/scheduler"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"75"` // 需要大于 OPTIMIZER_TIMEOUT
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		Planner struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"PLANNER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Enabled             bool   `env:"ENABLED" envDefault:"true"`
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Cache struct {
		Expiration int `env:"EXPIRATION" envDefault:"3600"` // 1 小时
	} `envPrefix:"CACHE_"`
	Optimizer struct {
		PopulationSize int     `env:"POPULATION_SIZE" envDefault:"0"`
		DivisionsOuter int     `env:"DIVISIONS_OUTER" envDefault:"2"`
		DivisionsInner int     `env:"DIVISIONS_INNER" envDefault:"1"`
		MaxEvaluations int     `env:"MAX_EVALUATIONS" envDefault:"10000"`
		CrossoverRate  float64 `env:"CROSSOVER_RATE" envDefault:"1.0"`
		MutationRate   float64 `env:"MUTATION_RATE" envDefault:"0"`
		Concurrency    int     `env:"CONCURRENCY" envDefault:"0"`
		Timeout        int     `env:"TIMEOUT" envDefault:"60"`
		Policy         string  `env:"POLICY" envDefault:"last"`
	} `envPrefix:"OPTIMIZER_"`
	Queue struct {
		Schedule string `env:"SCHEDULE" envDefault:"schedule_queue"`
		Email    string `env:"EMAIL" envDefault:"email_queue"`
	} `envPrefix:"QUEUE_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// SchedulerParameters 根据 OPTIMIZER_ 配置构造优化器参数，seed 为 0 时随机选择
func (cfg *Config) SchedulerParameters(seed uint64) *scheduler.Parameters {
	return &scheduler.Parameters{
		PopulationSize: cfg.Optimizer.PopulationSize,
		DivisionsOuter: cfg.Optimizer.DivisionsOuter,
		DivisionsInner: cfg.Optimizer.DivisionsInner,
		MaxEvaluations: cfg.Optimizer.MaxEvaluations,
		CrossoverRate:  cfg.Optimizer.CrossoverRate,
		MutationRate:   cfg.Optimizer.MutationRate,
		Concurrency:    cfg.Optimizer.Concurrency,
		Seed:           seed,
	}
}
