package middleware

import (
	"net/http"

	"pickle-storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWT validates the bearer token and copies the subject and role claims into
// the echo context, where handlers read them as userID and userRole.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return
			}
			if sub, ok := claims["sub"].(string); ok {
				c.Set("userID", sub)
			}
			if role, ok := claims["role"].(string); ok {
				c.Set("userRole", role)
			}
		},
	})
}

// AdminOnly rejects requests whose token does not carry the admin role. Must
// run after JWT.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("userRole").(string); role != models.RoleAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Admin access required"})
		}
		return next(c)
	}
}
