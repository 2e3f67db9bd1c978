package Controllers

import (
	"strconv"
	"time"

	"Bhumi/Models"
	"Bhumi/Reconciler"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AssignedTaskController exposes the completion workflow actions
type AssignedTaskController struct {
	DB         *gorm.DB
	Reconciler *Reconciler.AssignmentReconciler
}

func NewAssignedTaskController(db *gorm.DB, reconciler *Reconciler.AssignmentReconciler) *AssignedTaskController {
	return &AssignedTaskController{DB: db, Reconciler: reconciler}
}

func recordID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GetMyTasks lists the caller's assignments, newest first.
func (h *AssignedTaskController) GetMyTasks(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	var records []Models.AssignedTask
	err := h.DB.Preload("Task").Preload("Land").
		Where("employee_id = ?", user.ID).
		Order("assigned_date DESC").
		Find(&records).Error
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(records)
}

// GetAssignedTasks lists every assignment, with optional status and land
// filters. Admin only (enforced in routing).
func (h *AssignedTaskController) GetAssignedTasks(ctx *fiber.Ctx) error {
	query := h.DB.Preload("Task").Preload("Land").Preload("Employee")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if landID := ctx.Query("land_id"); landID != "" {
		query = query.Where("land_id = ?", landID)
	}
	var records []Models.AssignedTask
	if err := query.Order("assigned_date DESC").Find(&records).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(records)
}

// GetStatistics returns per-status counts plus the overdue count.
func (h *AssignedTaskController) GetStatistics(ctx *fiber.Ctx) error {
	statistics := fiber.Map{}
	for _, status := range []string{
		Models.StatusPending, Models.StatusInProgress,
		Models.StatusPendingApproval, Models.StatusComplete,
	} {
		var count int64
		if err := h.DB.Model(&Models.AssignedTask{}).Where("status = ?", status).
			Count(&count).Error; err != nil {
			return respondError(ctx, err)
		}
		statistics[status] = count
	}

	var overdue int64
	err := h.DB.Model(&Models.AssignedTask{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status IN ?",
			time.Now(), []string{Models.StatusPending, Models.StatusInProgress}).
		Count(&overdue).Error
	if err != nil {
		return respondError(ctx, err)
	}
	statistics["overdue"] = overdue
	return ctx.JSON(statistics)
}

// Start marks the caller's assignment as in progress.
func (h *AssignedTaskController) Start(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	if err := h.Reconciler.Start(id, user.ID); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task marked as in progress"})
}

type SubmitRequest struct {
	Notes    string `json:"notes" validate:"required"`
	PhotoRef string `json:"photo_ref"`
	PDFRef   string `json:"pdf_ref"`
}

// Submit sends the caller's completion evidence for admin approval.
func (h *AssignedTaskController) Submit(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	var req SubmitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.Reconciler.SubmitForApproval(id, user.ID, req.Notes, req.PhotoRef, req.PDFRef); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task submitted for approval"})
}

type AdminActionRequest struct {
	Notes string `json:"notes"`
}

// Approve finalizes a submission and force-completes sibling assignments of
// the same land and task.
func (h *AssignedTaskController) Approve(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	var req AdminActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.Reconciler.Approve(id, user.ID, req.Notes); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task approved"})
}

// MarkComplete is the admin force-complete path: a pending or in-progress
// record is pushed through submission and approval in one call.
func (h *AssignedTaskController) MarkComplete(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	var req AdminActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.Reconciler.MarkComplete(id, user.ID, req.Notes); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task marked complete"})
}

// Reject sends a submission back to the employee.
func (h *AssignedTaskController) Reject(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	var req AdminActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.Reconciler.Reject(id, user.ID, req.Notes); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task rejected"})
}

// Reassign hands the task back with fresh instructions. Notes are required.
func (h *AssignedTaskController) Reassign(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	var req AdminActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := h.Reconciler.Reassign(id, user.ID, req.Notes); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task reassigned"})
}

// Reset returns the record to pending.
func (h *AssignedTaskController) Reset(ctx *fiber.Ctx) error {
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	if err := h.Reconciler.Reset(id); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task reset to pending"})
}

// Delete removes a record outright. Completed records are protected; they
// can only disappear through reconciliation under the RemoveAll policy.
func (h *AssignedTaskController) Delete(ctx *fiber.Ctx) error {
	id, err := recordID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}
	var record Models.AssignedTask
	if err := h.DB.First(&record, id).Error; err != nil {
		return respondError(ctx, err)
	}
	if record.Status == Models.StatusComplete {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Completed tasks cannot be deleted"})
	}
	if err := h.DB.Unscoped().Delete(&record).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Task assignment deleted"})
}
