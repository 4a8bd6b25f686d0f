package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"attendance-app-server/internal/audit"
	"attendance-app-server/internal/config"
	"attendance-app-server/internal/middleware"
	"attendance-app-server/internal/models"
	"attendance-app-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Audit *audit.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Audit: auditLog}
}

// account is the role-independent view of a row from one of the three user
// tables, used by login and password reset.
type account struct {
	ID        string
	Role      models.Role
	Email     string
	FirstName string
	LastName  string
	check     func(password string) bool
}

// findAccountByEmail searches office_staff, then teachers, then students.
func (h *AuthHandler) findAccountByEmail(email string) (*account, error) {
	var staff models.OfficeStaff
	if err := h.DB.Where("email = ?", email).First(&staff).Error; err == nil {
		return &account{
			ID: staff.ID, Role: models.RoleOffice, Email: staff.Email,
			FirstName: staff.FirstName, LastName: staff.LastName,
			check: staff.CheckPassword,
		}, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var teacher models.Teacher
	if err := h.DB.Where("email = ?", email).First(&teacher).Error; err == nil {
		return &account{
			ID: teacher.ID, Role: models.RoleTeacher, Email: teacher.Email,
			FirstName: teacher.FirstName, LastName: teacher.LastName,
			check: teacher.CheckPassword,
		}, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var student models.Student
	if err := h.DB.Where("email = ?", email).First(&student).Error; err == nil {
		return &account{
			ID: student.ID, Role: models.RoleStudent, Email: student.Email,
			FirstName: student.FirstName, LastName: student.LastName,
			check: student.CheckPassword,
		}, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return nil, gorm.ErrRecordNotFound
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         models.UserRef `json:"user"`
}

// Login handles user login across the three account tables.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	acct, err := h.findAccountByEmail(req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !acct.check(req.Password) {
		h.Audit.Record(acct.ID, string(acct.Role), "login_failed", "wrong password")
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(acct.ID, acct.Role, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	refreshToken := models.RefreshToken{
		UserID:    acct.ID,
		Role:      acct.Role,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	h.Audit.Record(acct.ID, string(acct.Role), "login", "")
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User: models.UserRef{
			ID: acct.ID, Role: acct.Role,
			FirstName: acct.FirstName, LastName: acct.LastName,
		},
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles refreshing an access token using a refresh token,
// rotating the refresh token in the process.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	var storedToken models.RefreshToken
	err = h.DB.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		req.RefreshToken, claims.UserID, false, time.Now()).First(&storedToken).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	// The account must still exist.
	if _, err := models.FindUserRef(h.DB, claims.UserID, claims.Role); err != nil {
		utils.Unauthorized(c, "Account associated with token no longer exists")
		return
	}

	storedToken.IsRevoked = true
	h.DB.Save(&storedToken)

	newAccessToken, newRefreshTokenString, err := utils.GenerateTokens(claims.UserID, claims.Role, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	newRefreshToken := models.RefreshToken{
		UserID:    claims.UserID,
		Role:      claims.Role,
		Token:     newRefreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&newRefreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store new refresh token: "+err.Error())
		return
	}

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Logout revokes the supplied refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND is_revoked = ?", req.RefreshToken, false).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Token not found or already revoked, which is acceptable for logout.
			utils.Success(c, "Logout successful", nil)
		} else {
			utils.InternalServerError(c, "Database error during logout: "+err.Error())
		}
		return
	}

	storedToken.IsRevoked = true
	storedToken.ExpiresAt = time.Now()
	if err := h.DB.Save(&storedToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	switch role {
	case models.RoleOffice:
		var staff models.OfficeStaff
		if err := h.DB.First(&staff, "id = ?", userID).Error; err != nil {
			utils.NotFound(c, "User profile not found")
			return
		}
		utils.Success(c, "Profile fetched successfully", staff)
	case models.RoleTeacher:
		var teacher models.Teacher
		if err := h.DB.First(&teacher, "id = ?", userID).Error; err != nil {
			utils.NotFound(c, "User profile not found")
			return
		}
		utils.Success(c, "Profile fetched successfully", teacher)
	case models.RoleStudent:
		var student models.Student
		if err := h.DB.First(&student, "id = ?", userID).Error; err != nil {
			utils.NotFound(c, "User profile not found")
			return
		}
		utils.Success(c, "Profile fetched successfully", student)
	default:
		utils.Unauthorized(c, "Unknown role")
	}
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateProfile handles updating the currently authenticated user's name.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update")
		return
	}

	var err error
	switch role {
	case models.RoleOffice:
		err = h.DB.Model(&models.OfficeStaff{}).Where("id = ?", userID).Updates(updates).Error
	case models.RoleTeacher:
		err = h.DB.Model(&models.Teacher{}).Where("id = ?", userID).Updates(updates).Error
	case models.RoleStudent:
		err = h.DB.Model(&models.Student{}).Where("id = ?", userID).Updates(updates).Error
	default:
		utils.Unauthorized(c, "Unknown role")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", nil)
}

// ForgotPasswordRequest represents the request body for requesting a reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a single-use password reset token. The response is
// identical whether or not the email exists, to avoid account enumeration.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	acct, err := h.findAccountByEmail(req.Email)
	if err == nil {
		token := models.PasswordResetToken{
			UserID:    acct.ID,
			Role:      acct.Role,
			Token:     uuid.New().String(),
			ExpiresAt: time.Now().Add(time.Duration(h.Cfg.PasswordResetTokenExpiry) * time.Minute),
		}
		if err := h.DB.Create(&token).Error; err != nil {
			utils.InternalServerError(c, "Failed to create reset token: "+err.Error())
			return
		}
		// TODO: deliver the token by email once a mailer transport is configured.
		h.Audit.Record(acct.ID, string(acct.Role), "password_reset_requested", "")
	}

	utils.Success(c, "If the email exists, a reset token has been issued.", nil)
}

// ResetPasswordRequest represents the request body for consuming a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var token models.PasswordResetToken
	err := h.DB.Where("token = ? AND used_at IS NULL AND expires_at > ?", req.Token, time.Now()).
		First(&token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.BadRequest(c, "Reset token is invalid, used, or expired")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var acct models.Account
	if err := acct.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	switch token.Role {
	case models.RoleOffice:
		err = h.DB.Model(&models.OfficeStaff{}).Where("id = ?", token.UserID).Update("password", acct.Password).Error
	case models.RoleTeacher:
		err = h.DB.Model(&models.Teacher{}).Where("id = ?", token.UserID).Update("password", acct.Password).Error
	case models.RoleStudent:
		err = h.DB.Model(&models.Student{}).Where("id = ?", token.UserID).Update("password", acct.Password).Error
	default:
		utils.BadRequest(c, "Reset token has an unknown role")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to update password: "+err.Error())
		return
	}

	now := time.Now()
	token.UsedAt = &now
	h.DB.Save(&token)

	h.Audit.Record(token.UserID, string(token.Role), "password_reset", "")
	utils.Success(c, "Password has been reset.", nil)
}
