package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/types"
)

// CurrentAPIVersion is the version assumed when a client does not send one
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, rejects major versions
// other than the one served and echoes the version served
func VersionMiddleware() fiber.Handler {
	major, _, _ := strings.Cut(CurrentAPIVersion, ".")

	return func(c *fiber.Ctx) error {
		version := strings.TrimSpace(c.Get("X-Api-Version", CurrentAPIVersion))
		c.Set("X-Api-Version", CurrentAPIVersion)

		// "1", "1.0" and "1.x.y" all select the current major version
		requested, _, _ := strings.Cut(version, ".")
		if requested != major {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "Unsupported API version " + version,
				Type:    types.ErrorTypeValidation,
			}
		}

		return c.Next()
	}
}
