package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
	"github.com/ugandalearn/learn-service/internal/validator"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
	}
}

// GetProfile returns the caller's profile
// @Summary Get own profile
// @Description Returns the caller's profile joined with account email and name. Empty when not onboarded.
// @Tags profiles
// @Produce json
// @Success 200 {object} map[string]interface{} "profiles"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /profiles [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	profiles, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if profiles == nil {
		profiles = []*models.ProfileWithAccount{}
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// CreateProfile onboards the caller
// @Summary Create profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param profile body validator.ProfileCreateRequest true "Profile"
// @Success 200 {object} map[string]interface{} "profile"
// @Failure 400 {object} ErrorResponse "Missing fields, invalid role or profile exists"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req validator.ProfileCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Creating profile", "role", req.Role)

	profile, err := h.profileService.CreateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile patches the caller's profile
// @Summary Update profile
// @Description Only fields present in the body change. grade_level and school_name accept null to clear.
// @Tags profiles
// @Accept json
// @Produce json
// @Param patch body models.ProfilePatch true "Fields to change"
// @Success 200 {object} map[string]interface{} "profile"
// @Failure 400 {object} ErrorResponse "No fields to update"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /profiles [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &patch)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
