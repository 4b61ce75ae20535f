package handler

import (
    "context"      // context with cancellation for DB calls
    "database/sql" // sentinel errors from the repository layer
    "errors"       // errors.Is comparisons
    "net/http"     // HTTP status codes and primitives
    "strings"      // string normalization
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/kngrck/mern-project/internal/config"     // app configuration
    "github.com/kngrck/mern-project/internal/repository" // DB repositories
    "github.com/kngrck/mern-project/internal/utils"      // hashing and token issuing
)

// UserHandler bundles dependencies for the user endpoints: listing users,
// signup and login.  Signup and login both end by issuing an access
// token, so a fresh account can call the protected place routes
// immediately.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	if u == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResp mirrors the response shape of the original API: the user's id
// and email plus the freshly signed token.
type authResp struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// userPart is the public projection of a user record.  The password hash
// is never serialized.
type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// Signup: create the user and return a token immediately.
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || !strings.Contains(req.Email, "@") || len(req.Password) < 6 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, req.Image, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "User exists already."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Sign up failed, please try again later."})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Sign up failed, please try again later."})
	}

	return c.JSON(http.StatusCreated, authResp{UserID: uid, Email: req.Email, Token: access.Token})
}

// Login: verify credentials and return a new token.  An unknown email and
// a wrong password produce the same answer so the endpoint cannot be used
// to enumerate accounts.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid credentials, could not log in."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed, please try again later."})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid credentials, could not log in."})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed, please try again later."})
	}

	return c.JSON(http.StatusOK, authResp{UserID: u.ID, Email: u.Email, Token: access.Token})
}

// GetUsers handles GET /api/users and returns every account without the
// password hash.  No authentication is required.
func (h *UserHandler) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not get users."})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}
