package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/utils"
	"github.com/ugandalearn/learn-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubjectHandler struct {
	BaseHandler
	subjectService services.SubjectService
}

func NewSubjectHandler(subjectService services.SubjectService, logger utils.Logger) *SubjectHandler {
	return &SubjectHandler{
		BaseHandler:    NewBaseHandler(logger),
		subjectService: subjectService,
	}
}

// ListSubjects lists subjects with topic counts
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Param grade_level query string false "Only subjects offered at this grade"
// @Success 200 {object} map[string]interface{} "subjects"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /subjects [get]
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	gradeLevel := strings.TrimSpace(c.Query("grade_level"))

	subjects, err := h.subjectService.ListSubjects(c.Request.Context(), gradeLevel)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if subjects == nil {
		subjects = []*models.SubjectSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// CreateSubject adds a subject to the catalog
// @Summary Create subject
// @Description Teachers only
// @Tags subjects
// @Accept json
// @Produce json
// @Param subject body validator.SubjectCreateRequest true "Subject"
// @Success 200 {object} map[string]interface{} "subject"
// @Failure 400 {object} ErrorResponse "Missing fields or duplicate code"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Only teachers can create subjects"
// @Router /subjects [post]
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	// Non-teachers are refused whatever the body contains
	if err := h.subjectService.RequireTeacher(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	var req validator.SubjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Creating subject", "code", req.Code)

	subject, err := h.subjectService.CreateSubject(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject})
}

// ExportSubjects downloads the subject listing as a spreadsheet
// @Summary Export subjects
// @Tags subjects
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param grade_level query string false "Only subjects offered at this grade"
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /subjects/export [get]
func (h *SubjectHandler) ExportSubjects(c *gin.Context) {
	gradeLevel := strings.TrimSpace(c.Query("grade_level"))

	// Buffer first so a failed export can still return a JSON error
	var buf bytes.Buffer
	if err := h.subjectService.ExportSubjects(c.Request.Context(), gradeLevel, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := exportFilename(gradeLevel, time.Now().UTC())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func exportFilename(gradeLevel string, now time.Time) string {
	scope := "all"
	if gradeLevel != "" {
		scope = strings.ToLower(gradeLevel)
	}
	return fmt.Sprintf("subjects-%s-%s.xlsx", scope, now.Format("20060102"))
}
