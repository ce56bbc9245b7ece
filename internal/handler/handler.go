package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/campus-dev/timetable-manager/backend/internal/config"
	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
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

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
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
		// 每个已登录请求都加载调用者的账号记录，被停用的账号一律拒绝
		r.Use(h.myInfo)
		r.Use(h.preventDisabledUser)
		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		// 排课的基础数据由教务维护
		r.Route("/teachers", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/", h.CreateTeacher)
			r.Get("/", h.GetAllTeachers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.teacherInfo)
				r.Get("/", h.GetTeacher)
				r.Get("/timetable", h.GetTeacherTimetable)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Patch("/", h.UpdateTeacher)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Delete("/", h.DeleteTeacher)
			})
		})

		r.Route("/subjects", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/", h.CreateSubject)
			r.Get("/", h.GetAllSubjects)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.subjectInfo)
				r.Get("/", h.GetSubject)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Patch("/", h.UpdateSubject)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Delete("/", h.DeleteSubject)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/", h.CreateRoom)
			r.Get("/", h.GetAllRooms)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.roomInfo)
				r.Get("/", h.GetRoom)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Patch("/", h.UpdateRoom)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Delete("/", h.DeleteRoom)
			})
		})

		r.Route("/students", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice}))
			r.Post("/", h.CreateStudent)
			r.Post("/import", h.ImportStudents)
			r.Get("/", h.GetAllStudents)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.studentInfo)
				r.Get("/", h.GetStudent)
				r.Patch("/", h.UpdateStudent)
				r.Delete("/", h.DeleteStudent)
			})
		})

		r.Route("/sections", func(r chi.Router) {
			r.Get("/", h.GetAllSections)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/allocate", h.AllocateSections)
		})

		r.Route("/timetables", func(r chi.Router) {
			r.Get("/current", h.GetCurrentTimetable)
			r.Get("/history", h.GetTimetableHistory)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/generate", h.GenerateTimetable)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/import", h.ImportTimetable)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAcademicOffice})).Post("/reset-availability", h.ResetAvailability)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.timetableInfo)
				r.Get("/", h.GetTimetable)
				r.Get("/export", h.ExportTimetable)
				r.Get("/classroom-view", h.GetTimetableClassroomView)
			})
		})
	})
}
