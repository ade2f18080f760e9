package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vostok-trade/backend/internal/middleware"
	"github.com/vostok-trade/backend/internal/models"
	"github.com/vostok-trade/backend/internal/respond"
	"github.com/vostok-trade/backend/internal/store"
)

const (
	msgUserExists         = "User with this email already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
)

// UserStore defines the user persistence the handlers need.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	tokens   *TokenService
	validate *validator.Validate
}

func NewHandler(users UserStore, tokens *TokenService) *Handler {
	return &Handler{users: users, tokens: tokens, validate: validator.New()}
}

// userView serializes a user with an explicit null password.
type userView struct {
	*models.User
	Password *string `json:"password"`
}

type authResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

// Register creates a new user and returns it together with a token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx := r.Context()
	_, err := h.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		respond.Message(w, http.StatusBadRequest, msgUserExists)
		return
	case !errors.Is(err, store.ErrNotFound):
		slog.ErrorContext(ctx, "register lookup", "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		slog.ErrorContext(ctx, "hash password", "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}

	user := &models.User{
		Email:       req.Email,
		Password:    hash,
		UserType:    req.UserType,
		CompanyName: req.CompanyName,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respond.Message(w, http.StatusBadRequest, msgUserExists)
			return
		}
		slog.ErrorContext(ctx, "create user", "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		slog.ErrorContext(ctx, "issue token", "user_id", user.ID.Hex(), "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID.Hex(), "user_type", user.UserType)
	respond.JSON(w, http.StatusCreated, authResponse{User: userView{User: user}, Token: token})
}

// Login checks credentials and returns a fresh token. Unknown emails and
// wrong passwords get the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Message(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	ctx := r.Context()
	user, err := h.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		respond.Message(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "login lookup", "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !CheckPassword(user.Password, req.Password) {
		respond.Message(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		slog.ErrorContext(ctx, "issue token", "user_id", user.ID.Hex(), "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, authResponse{User: userView{User: user}, Token: token})
}

// Me returns the user resolved by the auth middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Message(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]*models.User{"user": user})
}
