package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/cache"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
)

// Store 是 handler 用到的持久化操作，*repository.Repository 实现了它
type Store interface {
	GetPlannerByID(id int64) (*domain.Planner, error)
	GetPlannerByUsername(username string) (*domain.Planner, error)
	GetAllPlanners() ([]*domain.Planner, error)
	CreatePlanner(planner *domain.Planner) error
	CreateSchedulingRequest(req *domain.SchedulingRequest) error
	GetSchedulingRequestByID(id string) (*domain.SchedulingRequest, error)
	GetSchedulingRequestsByPlannerID(plannerID int64) ([]*domain.SchedulingRequest, error)
	GetSchedulingResultByRequestID(requestID string) (*domain.SchedulingResult, error)
}

// Publisher 是 *amqp.Channel 的发布接口
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   Store
	translator   ut.Translator
	channel      Publisher
	outcomeCache cache.OutcomeCache

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, ch Publisher, outcomeCache cache.OutcomeCache) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		channel:      ch,
		outcomeCache: outcomeCache,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.With(h.myInfo).Get("/my-info", h.GetMyInfo)

		r.Route("/planners", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreatePlanner)
			r.Get("/", h.GetAllPlanners)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/generate", h.GenerateSchedule)
			r.Post("/", h.CreateSchedulingRequest)
			r.Get("/", h.GetMySchedulingRequests)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedulingRequest)
				r.Get("/", h.GetSchedulingRequest)
				r.Get("/chart", h.GetSchedulingChart)
			})
		})
	})
}
