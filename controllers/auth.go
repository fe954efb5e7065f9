package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

// AuthController handles sign-up, login and account recovery
type AuthController struct {
	auth *services.AuthService
	log  *slog.Logger
}

func NewAuthController(auth *services.AuthService, log *slog.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// Register handles user registration
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decode(r, &in); err != nil {
		respondError(w, ac.log, err)
		return
	}
	if _, err := ac.auth.Signup(r.Context(), in); err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondMessage(w, http.StatusCreated, "User registered successfully. Please check your email to verify your account.")
}

// Login handles user authentication
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decode(r, &in); err != nil {
		respondError(w, ac.log, err)
		return
	}
	tokens, err := ac.auth.Login(r.Context(), in)
	if err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondData(w, http.StatusOK, tokens)
}

// VerifyEmail handles email verification
func (ac *AuthController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, ac.log, services.ErrUnauthorized)
		return
	}
	tokens, err := ac.auth.Verify(r.Context(), token)
	if err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondData(w, http.StatusOK, tokens)
}

func (ac *AuthController) ResendToken(w http.ResponseWriter, r *http.Request) {
	if err := ac.auth.ResendVerification(r.Context(), mux.Vars(r)["email"]); err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Verification email sent")
}

func (ac *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := ac.auth.RequestPasswordReset(r.Context(), mux.Vars(r)["email"]); err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password reset code sent")
}

func (ac *AuthController) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var in services.ResetPasswordInput
	if err := decode(r, &in); err != nil {
		respondError(w, ac.log, err)
		return
	}
	tokens, err := ac.auth.ConfirmPasswordReset(r.Context(), in)
	if err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondData(w, http.StatusOK, tokens)
}

// RefreshToken reads the refresh token from the x-refresh-token header
func (ac *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	tokens, err := ac.auth.Refresh(r.Context(), r.Header.Get("x-refresh-token"))
	if err != nil {
		respondError(w, ac.log, err)
		return
	}
	respondData(w, http.StatusOK, tokens)
}
