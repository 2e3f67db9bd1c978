package Controllers

import (
	"strconv"

	"Bhumi/Models"
	"Bhumi/Reconciler"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LandController drives the assignment engine from the land create/edit flows
type LandController struct {
	DB         *gorm.DB
	Reconciler *Reconciler.AssignmentReconciler
}

func NewLandController(db *gorm.DB, reconciler *Reconciler.AssignmentReconciler) *LandController {
	return &LandController{DB: db, Reconciler: reconciler}
}

type CreateLandRequest struct {
	Name        string `json:"name" validate:"required"`
	Village     string `json:"village"`
	Taluka      string `json:"taluka"`
	District    string `json:"district"`
	IsMarketing bool   `json:"is_marketing"`

	Reconciler.Payload
}

// CreateLand registers a land and builds its initial assignment set. When no
// checklist is submitted, the catalog's default tasks for the land's
// partition are used (unassigned until workers are selected).
func (h *LandController) CreateLand(ctx *fiber.Ctx) error {
	var req CreateLandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if len(req.TaskNames) == 0 {
		defaults, err := Models.DefaultTasks(h.DB, req.IsMarketing)
		if err != nil {
			return respondError(ctx, err)
		}
		for _, task := range defaults {
			req.TaskNames = append(req.TaskNames, task.Name)
		}
	}

	land := Models.Land{
		Name:        req.Name,
		Village:     req.Village,
		Taluka:      req.Taluka,
		District:    req.District,
		IsMarketing: req.IsMarketing,
	}
	if err := land.SetTaskNames(req.TaskNames); err != nil {
		return respondError(ctx, err)
	}
	if err := h.DB.Create(&land).Error; err != nil {
		return respondError(ctx, err)
	}

	summary, err := h.Reconciler.ReconcileCreate(land.ID, req.Payload)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"land":    land,
		"summary": summary,
		"message": summary.Message(),
	})
}

// UpdateLandTasks reconciles the land's assignments against an edited
// checklist. The reconciler persists the checklist itself, in the same
// transaction as the records it describes.
func (h *LandController) UpdateLandTasks(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid land ID"})
	}

	var payload Reconciler.Payload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	summary, err := h.Reconciler.ReconcileUpdate(uint(id), payload)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"summary": summary,
		"message": summary.Message(),
	})
}

func (h *LandController) GetLands(ctx *fiber.Ctx) error {
	var lands []Models.Land
	if err := h.DB.Find(&lands).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(lands)
}

func (h *LandController) GetLand(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid land ID"})
	}
	var land Models.Land
	if err := h.DB.Preload("AssignedTasks.Task").Preload("AssignedTasks.Employee").
		First(&land, id).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(land)
}
