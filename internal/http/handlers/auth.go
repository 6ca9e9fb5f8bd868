package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/fakeapi"
	"github.com/hongminglow/storefront/internal/http/respond"
	"github.com/hongminglow/storefront/internal/middleware"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
)

// AuthHandler owns signup, login and current-user endpoints.
type AuthHandler struct {
	backend *fakeapi.Backend
	tokens  *auth.TokenManager
	log     logrus.FieldLogger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(backend *fakeapi.Backend, tokens *auth.TokenManager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{backend: backend, tokens: tokens, log: logger}
}

// Register attaches auth routes. Signup and login are served under both
// the "user" and "auth" prefixes.
func (h *AuthHandler) Register(r *mux.Router) {
	for _, prefix := range []string{"/user", "/auth"} {
		r.HandleFunc(prefix+"/signup", h.handleSignup).Methods(http.MethodPost)
		r.HandleFunc(prefix+"/login", h.handleLogin).Methods(http.MethodPost)
	}
	r.Handle("/auth/me", middleware.RequireAuth(h.tokens)(http.HandlerFunc(h.handleMe))).Methods(http.MethodGet)
}

type sessionPayload struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateSignup(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.RoleCustomer
	}
	created, err := h.backend.CreateAccount(models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Role:        role,
		Address:     strings.TrimSpace(req.Address),
	}, passwordHash)
	if err != nil {
		switch {
		case errors.Is(err, fakeapi.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			h.log.WithError(err).Error("create user failed")
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	token, err := h.tokens.Generate(created)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "User created successfully", sessionPayload{Token: token, User: created})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	account, err := h.backend.AccountByEmail(req.Email)
	if err != nil {
		if errors.Is(err, fakeapi.ErrNotFound) {
			h.log.WithField("email", req.Email).Info("login failed: unknown email")
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(account.User)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", sessionPayload{Token: token, User: account.User})
}

// handleMe returns the user object without an envelope.
func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.UserID(r.Context())
	user, err := h.backend.User(id)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	respond.Raw(w, http.StatusOK, user)
}

func validateSignup(req dto.SignupPayload) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.PhoneNumber) == "" {
		return errors.New("name, email, and phone number are required")
	}
	if len(strings.TrimSpace(req.Password)) < 8 || !utf8.ValidString(req.Password) {
		return errors.New("password must be at least 8 characters")
	}
	switch strings.TrimSpace(req.Role) {
	case "", models.RoleCustomer, models.RoleStaff, models.RoleAdmin:
		return nil
	default:
		return errors.New("unknown role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
