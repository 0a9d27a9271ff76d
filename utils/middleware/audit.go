package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records an audit entry for the wrapped admin action.
// Old state is captured from the named resource before the handler runs,
// new state from the request body.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := GetUser(c)
		if !ok || adminUser == nil {
			return c.Next() // Continue without logging if user not found
		}

		// Parse resource ID from params if available
		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsedID)
			}
		}

		var oldValue interface{}
		if resourceID > 0 {
			switch resource {
			case "applications":
				var app model.ProgramApplication
				if err := db.Preload("Decisions").First(&app, resourceID).Error; err == nil {
					oldValue = app
				}
			case "service_logs":
				var svcLog model.ServiceLog
				if err := db.First(&svcLog, resourceID).Error; err == nil {
					oldValue = svcLog
				}
			case "programs":
				var program model.Program
				if err := db.First(&program, resourceID).Error; err == nil {
					oldValue = program
				}
			}
		}

		var newValue interface{}
		if c.Method() == "POST" || c.Method() == "PUT" {
			body := c.Body()
			if len(body) > 0 {
				json.Unmarshal(body, &newValue)
			}
		}

		// Execute the actual handler
		err := c.Next()

		oldValueJSON, _ := json.Marshal(oldValue)
		newValueJSON, _ := json.Marshal(newValue)

		auditLog := model.AdminAuditLog{
			AdminID:     adminUser.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    datatypes.JSON(oldValueJSON),
			NewValue:    datatypes.JSON(newValueJSON),
			IPAddress:   c.IP(),
			UserAgent:   c.Get("User-Agent"),
			Description: c.Method() + " " + c.Path(),
		}

		db.Create(&auditLog)

		return err
	}
}
