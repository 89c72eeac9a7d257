package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const newPlannerPasswordLength = 12

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Planner)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) GetAllPlanners(w http.ResponseWriter, r *http.Request) {
	planners, err := h.repository.GetAllPlanners()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班员列表成功", planners)
}

func (h *Handler) CreatePlanner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string      `json:"username" validate:"required,alphanum,max=32"`
		FullName string      `json:"fullName" validate:"required"`
		Email    string      `json:"email" validate:"required,email"`
		Role     domain.Role `json:"role" validate:"omitempty,oneof=排班员 管理员"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Role == "" {
		req.Role = domain.RolePlanner
	}

	// 随机生成初始密码
	password := utils.GenerateRandomPassword(newPlannerPasswordLength)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	planner := &domain.Planner{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
	}

	if err := h.repository.CreatePlanner(planner); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "planners_username_key":
				h.errorResponse(w, r, "用户名已存在")
			case "planners_email_key":
				h.errorResponse(w, r, "邮箱已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 准备邮件
	mailMessage := domain.MailMessage{
		Type: "create_planner",
		To:   planner.Email,
		Data: domain.CreatePlannerMailData{
			FullName: planner.FullName,
			Username: planner.Username,
			Password: password,
		},
	}

	if err := h.publishJSON(h.config.Queue.Email, mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班员创建成功", planner)
}

// publishJSON 将消息序列化之后发送到指定的队列
func (h *Handler) publishJSON(queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.channel.PublishWithContext(
		ctx,
		"",
		queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
