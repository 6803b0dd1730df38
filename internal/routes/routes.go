package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, auth *services.AuthService) {
	authHandler := handlers.NewAuthHandler(auth, cfg)
	resetHandler := handlers.NewPasswordResetHandler(auth)
	profileHandler := handlers.NewProfileHandler(auth)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Server is working!"})
	})

	user := app.Group("/api/user")

	user.Post("/register", authHandler.Register)
	user.Post("/verify-email", authHandler.VerifyEmail)
	user.Post("/login", authHandler.Login)
	user.Post("/refresh-token", authHandler.RefreshToken)

	user.Post("/forgot-password", resetHandler.ForgotPassword)
	user.Post("/verify-forgot-password-otp", resetHandler.VerifyForgotPasswordOTP)
	user.Post("/reset-password", resetHandler.ResetPassword)

	// Protected routes
	session := middleware.AuthMiddleware(cfg)

	user.Post("/logout", session, authHandler.Logout)
	user.Post("/upload-avatar", session, profileHandler.UploadAvatar)
	user.Put("/update-details", session, profileHandler.UpdateUserDetails)
	user.Get("/user-details", session, profileHandler.GetUserDetails)
}
