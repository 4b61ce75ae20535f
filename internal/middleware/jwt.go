package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"               // HTTP status codes for responses
    "strings"               // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/kngrck/mern-project/internal/utils" // token verification
)

// authFailedMsg is the single answer given for every authentication
// failure.  A missing header, a malformed header, a bad signature and an
// expired token are indistinguishable to the caller on purpose.
const authFailedMsg = "Authentication failed!"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject into the request context under the key
// "user_id".  The provided secret must match the one used when issuing
// tokens.  This middleware wraps the mutating place routes so their
// handlers can resolve the authenticated user via getUserID.
//
// CORS preflight requests pass through unconditionally: the browser sends
// them without credentials, so demanding a token there would break every
// cross-origin client.
func JWTAuth(secret string) echo.MiddlewareFunc {
    // The outer function returns a middleware function.  Echo executes this
    // once when registering the middleware.
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        // The returned handler is invoked for each incoming HTTP request.
        return func(c echo.Context) error {
            if c.Request().Method == http.MethodOptions {
                return next(c)
            }
            // Read the Authorization header.  A valid header is
            // "Bearer " followed by the JWT.  Anything else fails with the
            // same response as an invalid token.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusForbidden, echo.Map{"error": authFailedMsg})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            userID, err := utils.VerifyAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": authFailedMsg})
            }

            // Store the verified subject in the context.  Handlers access
            // it via c.Get("user_id"); nothing about the credential itself
            // is retained or logged.
            c.Set("user_id", userID)
            return next(c)
        }
    }
}
