package audit

import (
	"github.com/gofiber/fiber/v2"

	"butik-backend/internal/auth"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

// UserInfo: log satırına yazılacak kullanıcı kimliği ve adı.
func UserInfo(c *fiber.Ctx) (uint, string, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return 0, "", err
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}
