package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

// RoleController manages roles and their assignment to users
type RoleController struct {
	roles *services.RoleService
	log   *slog.Logger
}

func NewRoleController(roles *services.RoleService, log *slog.Logger) *RoleController {
	return &RoleController{roles: roles, log: log}
}

func (rc *RoleController) GetRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := rc.roles.List(r.Context())
	if err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondData(w, http.StatusOK, roles)
}

func (rc *RoleController) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := rc.roles.Get(r.Context(), mux.Vars(r)["publicId"])
	if err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondData(w, http.StatusOK, role)
}

func (rc *RoleController) CreateRole(w http.ResponseWriter, r *http.Request) {
	var in services.RoleInput
	if err := decode(r, &in); err != nil {
		respondError(w, rc.log, err)
		return
	}
	role, err := rc.roles.Create(r.Context(), in)
	if err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondData(w, http.StatusCreated, role)
}

func (rc *RoleController) EditRole(w http.ResponseWriter, r *http.Request) {
	var in services.RoleInput
	if err := decode(r, &in); err != nil {
		respondError(w, rc.log, err)
		return
	}
	role, err := rc.roles.Edit(r.Context(), mux.Vars(r)["publicId"], in)
	if err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondData(w, http.StatusOK, role)
}

func (rc *RoleController) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := rc.roles.Delete(r.Context(), mux.Vars(r)["publicId"]); err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Role deleted successfully")
}

func (rc *RoleController) AssignRole(w http.ResponseWriter, r *http.Request) {
	var in services.AssignRoleInput
	if err := decode(r, &in); err != nil {
		respondError(w, rc.log, err)
		return
	}
	if err := rc.roles.Assign(r.Context(), in); err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Role assigned successfully")
}

func (rc *RoleController) RemoveUserRole(w http.ResponseWriter, r *http.Request) {
	var in services.AssignRoleInput
	if err := decode(r, &in); err != nil {
		respondError(w, rc.log, err)
		return
	}
	if err := rc.roles.Unassign(r.Context(), in); err != nil {
		respondError(w, rc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Role removed successfully")
}
