package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/user"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

type AuthHandler struct {
	register *user.Register
	login    *user.Login
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(register *user.Register, login *user.Login, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		validate: validator.New(),
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required,min=3,max=32"`
		Password string `json:"password" validate:"required,min=8,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	username := SanitizeUsername(body.Username)
	password := SanitizePassword(body.Password)
	if username == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid username or password length")
		return
	}
	result, err := h.register.Execute(r.Context(), user.RegisterInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, domerrors.ErrUserExists) {
			writeErr(w, http.StatusConflict, "", "username already taken")
			return
		}
		h.log.Error().Err(err).Msg("register failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         result.User.ID.String(),
		"username":   result.User.Username,
		"created_at": result.User.CreatedAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required,max=32"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.login.Execute(r.Context(), user.LoginInput{
		Username: SanitizeUsername(body.Username),
		Password: SanitizePassword(body.Password),
	})
	if err != nil {
		if errors.Is(err, domerrors.ErrInvalidCredentials) {
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid username or password")
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user": map[string]interface{}{
			"id":       result.User.ID.String(),
			"username": result.User.Username,
		},
	})
}
