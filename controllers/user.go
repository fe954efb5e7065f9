package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

// UserController handles user-related requests
type UserController struct {
	users *services.UserService
	log   *slog.Logger
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService, log *slog.Logger) *UserController {
	return &UserController{users: users, log: log}
}

// GetUsers lists every non-admin user
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	page, err := uc.users.List(r.Context(), params)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondPage(w, page)
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	user, err := uc.users.Get(r.Context(), p.UserID)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	var in services.ProfileInput
	if err := decode(r, &in); err != nil {
		respondError(w, uc.log, err)
		return
	}
	user, err := uc.users.UpdateProfile(r.Context(), p.UserID, in)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (uc *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	var in services.ChangePasswordInput
	if err := decode(r, &in); err != nil {
		respondError(w, uc.log, err)
		return
	}
	if err := uc.users.ChangePassword(r.Context(), p.UserID, in); err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password changed successfully")
}

// Deactivate lets users disable their own account
func (uc *UserController) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	if err := uc.users.Deactivate(r.Context(), p.UserID); err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Account deactivated")
}

func (uc *UserController) Reactivate(w http.ResponseWriter, r *http.Request) {
	if err := uc.users.Reactivate(r.Context(), mux.Vars(r)["userId"]); err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Account reactivated")
}

func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := uc.users.Delete(r.Context(), mux.Vars(r)["userId"]); err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "User deleted successfully")
}

func (uc *UserController) AddAddress(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	var in services.AddressInput
	if err := decode(r, &in); err != nil {
		respondError(w, uc.log, err)
		return
	}
	addr, err := uc.users.AddAddress(r.Context(), p.UserID, in)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondData(w, http.StatusCreated, addr)
}

func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	var in services.AddressInput
	if err := decode(r, &in); err != nil {
		respondError(w, uc.log, err)
		return
	}
	addr, err := uc.users.UpdateAddress(r.Context(), p.UserID, in)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondData(w, http.StatusOK, addr)
}

func (uc *UserController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, uc.log, err)
		return
	}
	if err := uc.users.DeleteAddress(r.Context(), p.UserID, mux.Vars(r)["id"]); err != nil {
		respondError(w, uc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Address deleted successfully")
}
