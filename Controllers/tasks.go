package Controllers

import (
	"strconv"

	"Bhumi/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TaskController serves the task catalog and the capability directory
type TaskController struct {
	DB *gorm.DB
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db}
}

// GetTasks lists catalog entries in display order. Pass ?marketing=true for
// the marketing partition.
func (h *TaskController) GetTasks(ctx *fiber.Ctx) error {
	query := h.DB.Order("position ASC")
	if marketing := ctx.Query("marketing"); marketing != "" {
		query = query.Where("marketing = ?", marketing == "true")
	}
	var tasks []Models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(tasks)
}

type GrantCapabilityRequest struct {
	TaskID     uint `json:"task_id" validate:"required"`
	EmployeeID uint `json:"employee_id" validate:"required"`
}

// GrantCapability explicitly links an employee to a task. The reconciler
// also grants links implicitly when assigning.
func (h *TaskController) GrantCapability(ctx *fiber.Ctx) error {
	var req GrantCapabilityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := Models.EnsureTaskManage(h.DB, req.TaskID, req.EmployeeID)
	if err != nil {
		return respondError(ctx, err)
	}
	message := "Capability already granted"
	if created {
		message = "Capability granted"
	}
	return ctx.JSON(fiber.Map{"message": message})
}

// GetEligibleEmployees lists employees linked to a task.
func (h *TaskController) GetEligibleEmployees(ctx *fiber.Ctx) error {
	taskID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	users, err := Models.EligibleEmployees(h.DB, uint(taskID))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(users)
}
