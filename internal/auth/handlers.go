package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/aryanbrs/packklite-sub001/internal/audit"
	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/security"
)

// Handler exposes the customer and admin account endpoints.
type Handler struct {
	Service *Service
	Cookies common.CookieOptions
}

func (h *Handler) startSession(w http.ResponseWriter, realm Realm, tok Token) error {
	csrf, err := security.NewCSRFToken()
	if err != nil {
		return err
	}
	h.Cookies.Set(w, realm.Cookie, tok.Value, tok.ExpiresAt, true)
	h.Cookies.Set(w, security.CSRFCookie, csrf, tok.ExpiresAt, false)
	return nil
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request, realm Realm) {
	if err := h.Service.Logout(r.Context(), realm, extractToken(r, realm)); err != nil {
		common.WriteError(w, err)
		return
	}
	h.Cookies.Clear(w, realm.Cookie, true)
	w.WriteHeader(http.StatusNoContent)
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	customer, tok, err := h.Service.Register(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.startSession(w, CustomerRealm, tok); err != nil {
		common.WriteError(w, common.Internal(err))
		return
	}
	common.Data(w, http.StatusCreated, customer)
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	customer, tok, err := h.Service.LoginCustomer(r.Context(), in, common.ClientIP(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.startSession(w, CustomerRealm, tok); err != nil {
		common.WriteError(w, common.Internal(err))
		return
	}
	common.Data(w, http.StatusOK, customer)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r, CustomerRealm)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := principalID(r, common.CustomerID)
	if !ok {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	customer, err := h.Service.Customer(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, customer)
}

// AdminLogin handles POST /api/v1/admin/auth/login.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	admin, tok, err := h.Service.LoginAdmin(r.Context(), in, common.ClientIP(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.startSession(w, AdminRealm, tok); err != nil {
		common.WriteError(w, common.Internal(err))
		return
	}
	common.Data(w, http.StatusOK, admin)
}

// AdminLogout handles POST /api/v1/admin/auth/logout.
func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r, AdminRealm)
}

// AdminMe handles GET /api/v1/admin/auth/me.
func (h *Handler) AdminMe(w http.ResponseWriter, r *http.Request) {
	id, ok := principalID(r, common.AdminID)
	if !ok {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	admin, err := h.Service.Admin(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, admin)
}

// ListAdmins handles GET /api/v1/admin/admins.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.Service.ListAdmins(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, admins)
}

// CreateAdmin handles POST /api/v1/admin/admins.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var in CreateAdminInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	admin, err := h.Service.CreateAdmin(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), admin.ID, map[string]any{"email": admin.Email})
	common.Data(w, http.StatusCreated, admin)
}

// DeleteAdmin handles DELETE /api/v1/admin/admins/{id}.
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalID(r, common.AdminID)
	if !ok {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	id, ok := common.PathUUID(w, r, "id", "admin")
	if !ok {
		return
	}
	if err := h.Service.DeleteAdmin(r.Context(), actor, id); err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), id.String(), nil)
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /api/v1/admin/admins/me/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := principalID(r, common.AdminID)
	if !ok {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	var in ChangePasswordInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.ChangePassword(r.Context(), id, in); err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), id.String(), nil)
	w.WriteHeader(http.StatusNoContent)
}

func principalID(r *http.Request, from func(ctx context.Context) (string, bool)) (uuid.UUID, bool) {
	raw, ok := from(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
