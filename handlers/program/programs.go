package program

import (
	"strconv"
	"time"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/g-rown/UAct-BackEnd/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProgramHandler handles program-related requests
type ProgramHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(db *gorm.DB) *ProgramHandler {
	return &ProgramHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateProgramRequest represents the request body for creating a program
type CreateProgramRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	Facilitator string `json:"facilitator" validate:"omitempty,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeStart   string `json:"time_start" validate:"omitempty,len=5"`
	TimeEnd     string `json:"time_end" validate:"omitempty,len=5"`
	Hours       int    `json:"hours" validate:"required,min=1,max=24"`
	Slots       int    `json:"slots" validate:"required,min=1,max=1000"`
}

// UpdateProgramRequest represents the request body for updating a program
type UpdateProgramRequest struct {
	Name        string `json:"name" validate:"omitempty,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	Facilitator string `json:"facilitator" validate:"omitempty,max=255"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TimeStart   string `json:"time_start" validate:"omitempty,len=5"`
	TimeEnd     string `json:"time_end" validate:"omitempty,len=5"`
	Hours       *int   `json:"hours" validate:"omitempty,min=1,max=24"`
	Slots       *int   `json:"slots" validate:"omitempty,min=1,max=1000"`
}

// ProgramResponse is a program plus its derived seat availability
type ProgramResponse struct {
	model.Program
	SlotsRemaining int `json:"slots_remaining"`
}

func toProgramResponse(p model.Program) ProgramResponse {
	return ProgramResponse{Program: p, SlotsRemaining: p.SlotsRemaining()}
}

func toProgramResponses(programs []model.Program) []ProgramResponse {
	out := make([]ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, toProgramResponse(p))
	}
	return out
}

// ListPrograms handles GET /api/v1/programs. Students only see programs
// with open seats, ordered soonest first; admins see everything.
func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	query := h.db.Model(&model.Program{})

	if search != "" {
		query = query.Where("name ILIKE ? OR location ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	if user.IsStudent() {
		query = query.Where("slots_taken < slots")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count programs")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var programs []model.Program
	if err := query.Order("date ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&programs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch programs")
	}

	return response.Paginated(c, toProgramResponses(programs), pagination)
}

// GetProgram handles GET /api/v1/programs/:id
func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	id := c.Params("id")

	var program model.Program
	if err := h.db.First(&program, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Program not found")
		}
		return response.InternalServerError(c, "Failed to fetch program")
	}

	return response.Success(c, toProgramResponse(program))
}

// CreateProgram handles POST /api/v1/programs (admin only)
func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	var req CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return response.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
	}

	program := model.Program{
		Name:        validation.SanitizeString(req.Name),
		Description: validation.SanitizeString(req.Description),
		Location:    validation.SanitizeString(req.Location),
		Facilitator: validation.SanitizeString(req.Facilitator),
		Date:        date,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
		Hours:       req.Hours,
		Slots:       req.Slots,
	}

	if err := h.db.Create(&program).Error; err != nil {
		return response.InternalServerError(c, "Failed to create program")
	}

	return response.Created(c, toProgramResponse(program))
}

// UpdateProgram handles PUT /api/v1/programs/:id (admin only).
// Slots can never be lowered below the seats already taken.
func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var program model.Program
	if err := h.db.First(&program, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Program not found")
		}
		return response.InternalServerError(c, "Failed to fetch program")
	}

	if req.Name != "" {
		program.Name = validation.SanitizeString(req.Name)
	}
	if req.Description != "" {
		program.Description = validation.SanitizeString(req.Description)
	}
	if req.Location != "" {
		program.Location = validation.SanitizeString(req.Location)
	}
	if req.Facilitator != "" {
		program.Facilitator = validation.SanitizeString(req.Facilitator)
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return response.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		}
		program.Date = date
	}
	if req.TimeStart != "" {
		program.TimeStart = req.TimeStart
	}
	if req.TimeEnd != "" {
		program.TimeEnd = req.TimeEnd
	}
	if req.Hours != nil {
		program.Hours = *req.Hours
	}
	if req.Slots != nil {
		if *req.Slots < program.SlotsTaken {
			return response.BadRequest(c, "Slots cannot be reduced below seats already taken")
		}
		program.Slots = *req.Slots
	}

	if err := h.db.Save(&program).Error; err != nil {
		return response.InternalServerError(c, "Failed to update program")
	}

	return response.Success(c, toProgramResponse(program))
}

// DeleteProgram handles DELETE /api/v1/programs/:id (admin only)
func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	id := c.Params("id")

	var program model.Program
	if err := h.db.First(&program, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Program not found")
		}
		return response.InternalServerError(c, "Failed to fetch program")
	}

	var applicationCount int64
	if err := h.db.Model(&model.ProgramApplication{}).
		Where("program_id = ?", program.ID).
		Count(&applicationCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check applications")
	}
	if applicationCount > 0 {
		return response.Conflict(c, "Program has applications and cannot be deleted", "")
	}

	if err := h.db.Delete(&program).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete program")
	}

	return response.SuccessWithMessage(c, "Program deleted successfully", nil)
}
