package auth

import (
	"github.com/g-rown/UAct-BackEnd/model"
	authutil "github.com/g-rown/UAct-BackEnd/utils/auth"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/g-rown/UAct-BackEnd/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RegisterRequest represents a student signup request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Course    string `json:"course" validate:"omitempty,max=100"`
	YearLevel string `json:"year_level" validate:"omitempty,max=20"`
}

// Register handles student signup. The student profile is created in the
// same transaction as the user so no student exists without one.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Course = validation.SanitizeString(req.Course)
	req.YearLevel = validation.SanitizeString(req.YearLevel)

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists", "")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	requiredHours := h.settings.GetInt(c.Context(), model.SettingDefaultRequiredHours, 40)

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         model.RoleStudent,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := model.StudentProfile{
			UserID:             user.ID,
			Course:             req.Course,
			YearLevel:          req.YearLevel,
			TotalRequiredHours: requiredHours,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.Created(c, TokenResponse{
		User:         toUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int((24 * 60 * 60)),
	})
}
