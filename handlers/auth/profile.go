package auth

import (
	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/g-rown/UAct-BackEnd/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UpdateProfileRequest carries the mutable account fields
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=100"`
	Course    string `json:"course" validate:"omitempty,max=100"`
	YearLevel string `json:"year_level" validate:"omitempty,max=20"`
}

// GetProfile returns the authenticated user with their student profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var user model.User
	if err := h.db.Preload("StudentProfile").First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	resp := fiber.Map{"user": toUserResponse(&user)}
	if user.StudentProfile != nil {
		resp["student_profile"] = user.StudentProfile
	}

	return response.Success(c, resp)
}

// UpdateProfile updates name and, for students, course and year level
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.Preload("StudentProfile").First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if req.Name != "" {
		user.Name = validation.SanitizeString(req.Name)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if user.StudentProfile != nil && (req.Course != "" || req.YearLevel != "") {
			if req.Course != "" {
				user.StudentProfile.Course = validation.SanitizeString(req.Course)
			}
			if req.YearLevel != "" {
				user.StudentProfile.YearLevel = validation.SanitizeString(req.YearLevel)
			}
			if err := tx.Save(user.StudentProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", toUserResponse(&user))
}
