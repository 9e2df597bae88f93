package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ugandalearn/learn-service/internal/repositories"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
)

type HandlerManager struct {
	profileHandler *ProfileHandler
	subjectHandler *SubjectHandler
	contentHandler *ContentHandler
	healthHandler  *HealthHandler

	requireAuth  gin.HandlerFunc
	optionalAuth gin.HandlerFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authenticator Authenticator,
	accounts repositories.AccountRepository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		profileHandler: NewProfileHandler(serviceManager.Profile(), logger),
		subjectHandler: NewSubjectHandler(serviceManager.Subject(), logger),
		contentHandler: NewContentHandler(serviceManager.Content(), logger),
		healthHandler:  NewHealthHandler(serviceManager, logger),
		requireAuth:    AuthMiddleware(authenticator, accounts, logger),
		optionalAuth:   OptionalAuthMiddleware(authenticator),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthHandler.HealthCheck)

	api := router.Group("/api")
	{
		profiles := api.Group("/profiles", hm.requireAuth)
		{
			profiles.GET("", hm.profileHandler.GetProfile)
			profiles.POST("", hm.profileHandler.CreateProfile)
			profiles.PUT("", hm.profileHandler.UpdateProfile)
		}

		subjects := api.Group("/subjects")
		{
			// Listing is public; identity is attached when present
			subjects.GET("", hm.optionalAuth, hm.subjectHandler.ListSubjects)
			subjects.POST("", hm.requireAuth, hm.subjectHandler.CreateSubject)
			subjects.GET("/export", hm.requireAuth, hm.subjectHandler.ExportSubjects)
		}

		ai := api.Group("/ai", hm.requireAuth)
		{
			ai.POST("/generate-content", hm.contentHandler.GenerateContent)
		}
	}
}
