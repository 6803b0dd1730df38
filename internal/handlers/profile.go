package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	auth *services.AuthService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(auth *services.AuthService) *ProfileHandler {
	return &ProfileHandler{auth: auth}
}

// UploadAvatar stores the multipart "avatar" file as the user's avatar.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Provide an image")
	}

	file, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Provide an image")
	}
	defer file.Close()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarSize+1))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Provide an image")
	}

	user, err := h.auth.UploadAvatar(c.UserContext(), userID, services.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "upload profile", fiber.Map{
		"_id":    user.ID,
		"avatar": user.Avatar,
	})
}

type updateDetailsRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Mobile   *string `json:"mobile"`
	Password *string `json:"password"`
}

// UpdateUserDetails changes only the fields present in the request body.
func (h *ProfileHandler) UpdateUserDetails(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.UpdateUserDetails(c.UserContext(), userID, services.UpdateDetailsInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "Updated successfully", user)
}

// GetUserDetails returns the authenticated user's profile.
func (h *ProfileHandler) GetUserDetails(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.auth.GetUserDetails(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "user details", user)
}
