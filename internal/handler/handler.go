package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/careshift-dev/hospital-roster/backend/internal/config"
	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
	"github.com/careshift-dev/hospital-roster/backend/internal/repository"
	"github.com/careshift-dev/hospital-roster/backend/internal/rules"
	"github.com/careshift-dev/hospital-roster/backend/internal/workflow"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	engine      *rules.Engine
	workflow    *workflow.Workflow
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	engine := rules.NewEngine(repo, repo, repo)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		engine:      engine,
		workflow:    workflow.New(repo, engine),
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

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
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
			// 自选约定由用户自己管理
			r.Route("/conventions", func(r chi.Router) {
				r.Get("/", h.GetMyConventions)
				r.Post("/", h.SelectMyConvention)
				r.Delete("/{conventionID}", h.RemoveMyConvention)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 排班需要知道同事信息，所有人都可以查看
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
				// 管理员为用户指派约定
				r.Route("/conventions", func(r chi.Router) {
					r.Get("/", h.GetUserConventions)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.AssignUserConvention)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/{conventionID}", h.RemoveUserConvention)
				})
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateShift)
			r.Get("/", h.GetAllShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.Get("/", h.GetShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteShift)
			})
		})

		r.Route("/conventions", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateConvention)
			r.Get("/", h.GetAllConventions)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.conventionInfo)
				r.Get("/", h.GetConvention)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateConvention)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteConvention)
			})
		})

		r.Route("/shift-assignments", func(r chi.Router) {
			scheduler := h.RequiredRole([]domain.Role{domain.RoleHeadNurse, domain.RoleAdmin})
			r.With(scheduler).Post("/", h.CreateShiftAssignment)
			r.With(scheduler).Post("/bulk", h.BulkCreateShiftAssignments)
			r.With(scheduler).Post("/validate", h.ValidateShiftAssignment)
			r.Get("/", h.GetShiftAssignments)
			r.With(scheduler).Patch("/{id}", h.UpdateShiftAssignment)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/{id}", h.DeleteShiftAssignment)
		})

		r.Route("/messages", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateMessage)
			r.Get("/", h.GetAllMessages)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/{id}", h.DeleteMessage)
		})
	})
}
