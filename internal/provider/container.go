package provider

import (
	"github.com/astra-preschool/internal/authz"
	"github.com/astra-preschool/internal/cache"
	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/queue"
	"github.com/astra-preschool/internal/repository"
	"github.com/astra-preschool/internal/service"
)

// Container wires repositories and services for the HTTP server and the
// queue worker.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo    repository.UserRepository
	StudentRepo repository.StudentRepository
	PaymentRepo repository.PaymentRepository
	OtpRepo     repository.OtpRepository

	// Services
	AuthzService   *authz.Service
	AuthService    *service.AuthService
	OtpService     *service.OtpService
	SMSService     *service.SMSService
	CaptchaService *service.CaptchaService
	StudentService *service.StudentService
	PaymentService *service.PaymentService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.StudentRepo = repository.NewStudentRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.OtpRepo = repository.NewOtpRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SMSService = service.NewSMSService(&c.Config.SMS)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.OtpService = service.NewOtpService(c.Config, c.UserRepo, c.OtpRepo, c.SMSService)
	c.StudentService = service.NewStudentService(c.StudentRepo, c.UserRepo)
	c.PaymentService = service.NewPaymentService(c.Config, c.PaymentRepo, c.StudentRepo, c.UserRepo, c.QueueClient, c.SMSService)
}
