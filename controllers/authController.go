package controllers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-app/auth"
	"warehouse-app/config"
	"warehouse-app/middleware"
	"warehouse-app/models"
)

// Register is intentionally disabled: accounts come from seeding.
func Register(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Регистрация отключена. Используйте аккаунт администратора."})
}

// Login verifies the admin credentials and opens a cookie session bound
// to the user's first organization.
func Login(c *gin.Context) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}
	username := strings.TrimSpace(payload.Username)

	var user models.User
	err := config.DB.QueryRow(
		"SELECT id, name, email, password_hash FROM users WHERE name = ?", username,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if err == sql.ErrNoRows || (err == nil && !auth.VerifyPassword(payload.Password, user.PasswordHash)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверное имя пользователя или пароль"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var (
		orgID, role, orgName, joinCode string
	)
	err = config.DB.QueryRow(`
		SELECT m.org_id, m.role, o.name, COALESCE(o.join_code, '')
		FROM memberships m
		JOIN organizations o ON o.id = m.org_id
		WHERE m.user_id = ?
		ORDER BY m.created_at ASC
		LIMIT 1
	`, user.ID).Scan(&orgID, &role, &orgName, &joinCode)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusForbidden, gin.H{"error": "У пользователя нет организации"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token := auth.NewSessionToken()
	now := time.Now()
	_, err = config.DB.Exec(
		"INSERT INTO sessions (token, user_id, org_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		token, user.ID, orgID, config.FormatTime(now.Add(auth.SessionTTL)), config.FormatTime(now),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	setSessionCookie(c, token, int(auth.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"me": gin.H{
			"name":        user.Name,
			"email":       user.Email,
			"orgName":     orgName,
			"orgJoinCode": joinCode,
			"role":        role,
		},
	})
}

// Logout drops the session and its draft, then clears the cookie.
func Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookie); err == nil && token != "" {
		config.DB.Exec("DELETE FROM sessions WHERE token = ?", token)
		drafts.drop(token)
	}
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the authenticated identity.
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentAuth(c))
}

// UpdateMemberRole reassigns a member's role by email. Owner only
// (enforced by route middleware).
func UpdateMemberRole(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)

	var payload struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	role := strings.TrimSpace(payload.Role)
	if email == "" || (role != models.RoleOwner && role != models.RoleManager && role != models.RoleViewer) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите корректные email и role"})
		return
	}

	var userID string
	err := config.DB.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := config.DB.Exec(
		"UPDATE memberships SET role = ? WHERE user_id = ? AND org_id = ?",
		role, userID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не состоит в вашей организации"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, maxAge, "/", "", false, true)
}
