package student

import (
	"errors"
	"strconv"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StudentHandler handles student progress queries
type StudentHandler struct {
	db *gorm.DB
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{db: db}
}

// ProgressResponse is a student profile with derived progress figures
type ProgressResponse struct {
	model.StudentProfile
	HoursRemaining int `json:"hours_remaining"`
}

func toProgressResponse(p model.StudentProfile) ProgressResponse {
	return ProgressResponse{StudentProfile: p, HoursRemaining: p.HoursRemaining()}
}

// ListStudents handles GET /api/v1/students (admin only)
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")
	course := c.Query("course", "")

	query := h.db.Model(&model.StudentProfile{}).
		Joins("JOIN users ON users.id = student_profiles.user_id")

	if search != "" {
		query = query.Where("users.name ILIKE ? OR users.email ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if course != "" {
		query = query.Where("student_profiles.course = ?", course)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var profiles []model.StudentProfile
	if err := query.Preload("User").
		Order("student_profiles.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	out := make([]ProgressResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProgressResponse(p))
	}

	return response.Paginated(c, out, pagination)
}

// GetStudent handles GET /api/v1/students/:id (admin only)
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var profile model.StudentProfile
	if err := h.db.Preload("User").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, toProgressResponse(profile))
}

// GetMyProgress handles GET /api/v1/students/me (student only)
func (h *StudentHandler) GetMyProgress(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var profile model.StudentProfile
	if err := h.db.Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return response.NotFound(c, "Student profile not found")
	}

	return response.Success(c, toProgressResponse(profile))
}
