package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

// issuedCode pulls the last OTP code out of the debug log
func (f *apiFixture) issuedCode(t *testing.T) string {
	t.Helper()
	var code string
	for _, line := range f.logs.Lines() {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry["message"] == "otp issued" {
			code, _ = entry["code"].(string)
		}
	}
	if len(code) != 6 {
		t.Fatalf("no otp code in logs")
	}
	return code
}

func TestChangePassword(t *testing.T) {
	f := newAPIFixture(t)
	admin := cookie(f.adminToken(t))

	expectMessage(t, f.do(t, http.MethodPost, "/api/admin/change-password", map[string]string{}, admin),
		http.StatusBadRequest, "New password is required")
	expectMessage(t, f.do(t, http.MethodPost, "/api/admin/change-password", map[string]string{"newPassword": "new secret"}, admin),
		http.StatusOK, "Password updated successfully")

	expectStatus(t, f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": adminEmail, "password": adminPassword,
	}, fromIP("192.0.2.50")), http.StatusUnauthorized)
	expectStatus(t, f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": adminEmail, "password": "new secret",
	}, fromIP("192.0.2.50")), http.StatusOK)

	// a token for an account that no longer exists
	ghost := cookie(f.token(t, 9999, models.RoleSuperAdmin))
	expectMessage(t, f.do(t, http.MethodPost, "/api/admin/change-password", map[string]string{"newPassword": "x"}, ghost),
		http.StatusNotFound, "User not found")
}

func TestOTPLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	admin := cookie(f.adminToken(t))

	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/request", map[string]string{}, admin),
		http.StatusBadRequest, "Purpose is required")

	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/request", map[string]string{"purpose": "change-password"}, admin),
		http.StatusOK, "OTP generated successfully")
	code := f.issuedCode(t)

	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/verify", map[string]string{"otp": code}, admin),
		http.StatusBadRequest, "OTP and purpose required")
	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/verify", map[string]string{"otp": code, "purpose": "other"}, admin),
		http.StatusBadRequest, "Invalid or expired OTP")

	verify := map[string]string{"otp": code, "purpose": "change-password"}
	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/verify", verify, admin), http.StatusOK, "OTP verified successfully")
	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/verify", verify, admin), http.StatusBadRequest, "Invalid or expired OTP")
}

func TestOTPIsScopedToRequester(t *testing.T) {
	f := newAPIFixture(t)
	admin := cookie(f.adminToken(t))

	expectStatus(t, f.do(t, http.MethodPost, "/api/otp/request", map[string]string{"purpose": "delete"}, admin), http.StatusOK)
	code := f.issuedCode(t)

	deputyID := createUser(t, database.NewUserRepo(f.db), "deputy@school.test", "deputy pass", models.RoleSuperAdmin, true)
	deputy := cookie(f.token(t, deputyID, models.RoleSuperAdmin))

	verify := map[string]string{"otp": code, "purpose": "delete"}
	expectMessage(t, f.do(t, http.MethodPost, "/api/otp/verify", verify, deputy), http.StatusBadRequest, "Invalid or expired OTP")
	expectStatus(t, f.do(t, http.MethodPost, "/api/otp/verify", verify, admin), http.StatusOK)
}

func TestAuditListing(t *testing.T) {
	f := newAPIFixture(t)
	admin := cookie(f.adminToken(t))

	f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": adminPassword})
	f.do(t, http.MethodPost, "/api/gallery", map[string]string{"image": "/a.jpg"}, admin)
	f.do(t, http.MethodPost, "/api/gallery", map[string]string{"image": "/b.jpg"}, admin)

	rec := f.do(t, http.MethodGet, "/api/admin/audit?limit=1", nil, admin)
	expectStatus(t, rec, http.StatusOK)
	page := decode[models.AuditListResponse](t, rec)
	if page.Total != 3 || page.Limit != 1 || len(page.Logs) != 1 || page.Logs[0].Action != "gallery_image.create" {
		t.Fatalf("unexpected page: %+v", page)
	}

	rec = f.do(t, http.MethodGet, "/api/admin/audit?action=login", nil, admin)
	page = decode[models.AuditListResponse](t, rec)
	if page.Total != 1 || page.Logs[0].UserID != f.adminID || page.Logs[0].Target != adminEmail {
		t.Fatalf("unexpected login entries: %+v", page.Logs)
	}

	// out of range limits fall back to the default page size
	page = decode[models.AuditListResponse](t, f.do(t, http.MethodGet, "/api/admin/audit?limit=5000&offset=-3", nil, admin))
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("unexpected paging: limit=%d offset=%d", page.Limit, page.Offset)
	}
}

func TestUserManagement(t *testing.T) {
	f := newAPIFixture(t)
	admin := cookie(f.adminToken(t))

	expectMessage(t, f.do(t, http.MethodPost, "/api/admin/users", map[string]string{
		"email": "teacher@school.test", "password": "short",
	}, admin), http.StatusBadRequest, "Password must be at least 8")
	expectMessage(t, f.do(t, http.MethodPost, "/api/admin/users", map[string]string{
		"email": "teacher@school.test", "password": "long enough", "role": "ROOT",
	}, admin), http.StatusBadRequest, "Role is invalid")

	rec := f.do(t, http.MethodPost, "/api/admin/users", map[string]string{
		"email": "Teacher@School.test", "password": "long enough",
	}, admin)
	expectStatus(t, rec, http.StatusCreated)
	user := decode[models.User](t, rec)
	if user.Role != models.RoleUser || !user.IsActive || user.Email != "teacher@school.test" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	expectMessage(t, f.do(t, http.MethodPost, "/api/admin/users", map[string]string{
		"email": "teacher@school.test", "password": "long enough",
	}, admin), http.StatusConflict, "User already exists")

	path := fmt.Sprintf("/api/admin/users/%d/active", user.ID)
	rec = f.do(t, http.MethodPut, path, map[string]bool{"active": false}, admin)
	expectStatus(t, rec, http.StatusOK)
	if decode[models.User](t, rec).IsActive {
		t.Fatal("user still active")
	}
	expectMessage(t, f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "teacher@school.test", "password": "long enough",
	}), http.StatusUnauthorized, "Invalid credentials")

	expectMessage(t, f.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/active", f.adminID), map[string]bool{"active": false}, admin),
		http.StatusBadRequest, "You cannot deactivate your own account")
	expectMessage(t, f.do(t, http.MethodPut, "/api/admin/users/999/active", map[string]bool{"active": true}, admin),
		http.StatusNotFound, "User not found")
	expectStatus(t, f.do(t, http.MethodPut, path, map[string]string{}, admin), http.StatusBadRequest)

	users := decode[[]models.User](t, f.do(t, http.MethodGet, "/api/admin/users", nil, admin))
	if len(users) != 4 {
		t.Fatalf("expected 4 users, got %d", len(users))
	}
}
