package routes

import (
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/config"
	"github.com/kassemshdy/aspire-library/internal/handlers"
	infraRepo "github.com/kassemshdy/aspire-library/internal/infra/repository"
	"github.com/kassemshdy/aspire-library/internal/metrics"
	"github.com/kassemshdy/aspire-library/internal/middleware"
	"github.com/kassemshdy/aspire-library/internal/models"
	ucAdvice "github.com/kassemshdy/aspire-library/internal/usecase/advice"
	ucBook "github.com/kassemshdy/aspire-library/internal/usecase/book"
	ucLoan "github.com/kassemshdy/aspire-library/internal/usecase/loan"
	ucStats "github.com/kassemshdy/aspire-library/internal/usecase/stats"
	ucUser "github.com/kassemshdy/aspire-library/internal/usecase/user"
	"github.com/kassemshdy/aspire-library/internal/validators"
)

type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics

	// Covers is nil when object storage is not configured.
	Covers  ucBook.CoverStore
	Encoder ucBook.CoverEncoder
	AI      ai.TextGenerationProvider
	Now     func() time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	db, cfg := d.DB, d.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.Metrics(d.Metrics),
		middleware.RequestLogger(d.Log),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ======================================================
	// INFRA
	// ======================================================
	bookRepo := infraRepo.NewBookGormRepository(db)
	loanRepo := infraRepo.NewLoanGormRepository(db)
	userRepo := infraRepo.NewUserGormRepository(db)

	auditLogger := audit.New()

	var resolver validators.Resolver
	if cfg.CheckEmailDomain {
		resolver = net.DefaultResolver
	}

	advisor := ai.NewAdvisor(d.AI, d.Metrics)

	// ======================================================
	// USE CASES
	// ======================================================
	bookUC := handlers.BookUseCases{
		List:       ucBook.NewListBooks(bookRepo),
		Get:        ucBook.NewGetBook(bookRepo),
		Categories: ucBook.NewListCategories(bookRepo),
		Create:     ucBook.NewCreateBook(db, bookRepo, auditLogger),
		Update:     ucBook.NewUpdateBook(db, bookRepo, auditLogger),
		Archive:    ucBook.NewSetArchived(db, bookRepo, auditLogger, d.Now),
		Delete:     ucBook.NewDeleteBook(db, bookRepo, auditLogger),
		Cover:      ucBook.NewUploadCover(db, bookRepo, auditLogger, d.Covers, d.Encoder),
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	healthHandler := handlers.NewHealthHandler(db)

	authHandler := handlers.NewAuthHandler(
		ucUser.NewRegister(db, userRepo, resolver),
		ucUser.NewLogin(userRepo),
		cfg.JWTSecret,
	)
	meHandler := handlers.NewMeHandler()
	userHandler := handlers.NewUserHandler(
		ucUser.NewListUsers(userRepo),
		ucUser.NewSetRole(db, userRepo, auditLogger),
	)

	bookHandler := handlers.NewBookHandler(bookUC)

	loanHandler := handlers.NewLoanHandler(
		ucLoan.NewCheckout(db, loanRepo, auditLogger, d.Now),
		ucLoan.NewReturn(db, loanRepo, auditLogger, d.Now),
		ucLoan.NewListLoans(loanRepo, d.Now),
		d.Metrics,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(audit.NewReader(db))
	dashboardHandler := handlers.NewDashboardHandler(ucStats.NewDashboard(db, loanRepo, d.Now))

	aiHandler := handlers.NewAIHandler(
		advisor,
		ucAdvice.NewParseSearch(bookRepo, advisor),
		ucAdvice.NewRecommendSimilar(bookRepo, advisor),
		ucAdvice.NewDiscover(advisor),
		ucAdvice.NewRecommendPurchases(bookRepo, loanRepo, advisor),
	)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// ======================================================
	// API
	// ======================================================
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret, userRepo))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// BOOKS
			// ------------------------------
			secured.GET("/books", bookHandler.List)
			secured.GET("/books/categories", bookHandler.Categories)
			secured.GET("/books/:id", bookHandler.Get)
			secured.POST("/books", bookHandler.Create)
			secured.PUT("/books/:id", bookHandler.Update)
			secured.PATCH("/books/:id", bookHandler.Archive)
			secured.DELETE("/books/:id", bookHandler.Delete)
			secured.POST("/books/:id/cover", bookHandler.UploadCover)

			// ------------------------------
			// LOANS
			// ------------------------------
			secured.POST("/books/:id/loan", loanHandler.Transition)
			secured.DELETE("/books/:id/loan", loanHandler.Return)
			secured.GET("/loans", loanHandler.List)

			secured.GET("/dashboard/stats", dashboardHandler.Stats)

			// ------------------------------
			// AI
			// ------------------------------
			secured.POST("/ai/generate-description", aiHandler.GenerateDescription)
			secured.POST("/ai/search", aiHandler.Search)
			secured.POST("/ai/recommend", aiHandler.Recommend)
			secured.POST("/ai/discover", aiHandler.Discover)
			secured.POST("/ai/purchase-recommendations", aiHandler.PurchaseRecommendations)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/")
			admin.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				admin.GET("/users", userHandler.List)
				admin.PATCH("/users/:id/role", userHandler.SetRole)
				admin.GET("/audit", auditLogsHandler.List)
			}
		}
	}
}
