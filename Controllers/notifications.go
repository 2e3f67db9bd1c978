package Controllers

import (
	"strconv"

	"Bhumi/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications lists the caller's notifications, newest first.
func (h *NotificationController) GetNotifications(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	var notifications []Models.Notification
	err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").Limit(100).
		Find(&notifications).Error
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(notifications)
}

// GetUnreadCount returns the caller's unread notification count.
func (h *NotificationController) GetUnreadCount(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	count, err := Models.UnreadNotificationCount(h.DB, user.ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"unread": count})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid notification ID"})
	}

	var notification Models.Notification
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		First(&notification).Error; err != nil {
		return respondError(ctx, err)
	}
	notification.Read = true
	if err := h.DB.Save(&notification).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Notification marked as read"})
}
