package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/middleware"
	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/repository"
	"github.com/harentsoaR/telecare-api/internal/services"
	"github.com/harentsoaR/telecare-api/internal/utils"
	"go.uber.org/zap"
)

const minPasswordLength = 6

const errInvalidLogin = "Invalid email or password"

type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`

	Address string `json:"address"`
	City    string `json:"city"`

	Specialization string   `json:"specialization"`
	LicenseNumber  string   `json:"licenseNumber"`
	Qualification  string   `json:"qualification"`
	Experience     int      `json:"experience"`
	Fee            int      `json:"fee"`
	Department     string   `json:"department"`
	Bio            string   `json:"bio"`
	Timings        string   `json:"timings"`
	Languages      []string `json:"languages"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// authResponse is the body returned by signup and login.
func (h *Handler) authResponse(c *gin.Context, status int, message string, acc models.Account) {
	pair, err := h.Codec.EncodePair(acc)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Could not generate token", err))
		return
	}
	c.JSON(status, gin.H{
		"message":      message,
		"user":         acc.View(),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	req.Email = normalizeEmail(req.Email)

	role, ok := models.ParseRole(req.Role)
	if !ok {
		apperror.Respond(c, apperror.Validation("Invalid role. Must be 'user' or 'doctor'"))
		return
	}
	if len(req.Password) < minPasswordLength {
		apperror.Respond(c, apperror.Validation("Password must be at least %d characters", minPasswordLength))
		return
	}

	ctx := c.Request.Context()
	taken, err := h.Resolver.EmailTaken(ctx, req.Email)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to create account", err))
		return
	}
	if taken {
		apperror.Respond(c, apperror.Conflict("Email already registered"))
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to hash password", err))
		return
	}

	var acc models.Account
	switch role {
	case models.RoleDoctor:
		d := &models.Doctor{
			FullName:       req.FullName,
			Email:          req.Email,
			Phone:          req.Phone,
			Password:       hashed,
			Specialization: req.Specialization,
			LicenseNumber:  req.LicenseNumber,
			Qualification:  req.Qualification,
			Experience:     req.Experience,
			Fee:            req.Fee,
			Available:      true,
			Department:     req.Department,
			Bio:            req.Bio,
			Timings:        req.Timings,
			Languages:      req.Languages,
		}
		err = h.Store.CreateDoctor(ctx, d)
		acc = d
	default:
		u := &models.User{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: hashed,
			Address:  req.Address,
			City:     req.City,
		}
		err = h.Store.CreateUser(ctx, u)
		acc = u
	}
	if errors.Is(err, repository.ErrDuplicateEmail) {
		apperror.Respond(c, apperror.Conflict("Email already registered"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to create account", err))
		return
	}

	h.Logger.Info("account created", zap.String("role", string(role)), zap.Int64("accountId", acc.AccountID()))
	h.authResponse(c, http.StatusCreated, "Signup successful", acc)
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	acc, err := h.Resolver.ResolveByEmail(c.Request.Context(), normalizeEmail(req.Email), "")
	if errors.Is(err, services.ErrAccountNotFound) {
		apperror.Respond(c, apperror.InvalidCredentials(errInvalidLogin))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Login failed", err))
		return
	}
	if !utils.CheckPasswordHash(req.Password, acc.AccountPasswordHash()) {
		apperror.Respond(c, apperror.InvalidCredentials(errInvalidLogin))
		return
	}

	if req.Role != "" {
		role, ok := models.ParseRole(req.Role)
		if !ok {
			apperror.Respond(c, apperror.Validation("Invalid role. Must be 'user' or 'doctor'"))
			return
		}
		if role != acc.AccountRole() {
			apperror.Respond(c, apperror.Forbidden("This account is not registered as "+string(role)))
			return
		}
	}

	h.authResponse(c, http.StatusOK, "Login successful", acc)
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is not rotated.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	claims, err := h.Codec.Decode(req.RefreshToken)
	if errors.Is(err, utils.ErrExpiredToken) {
		apperror.Respond(c, apperror.Unauthenticated("Refresh token has expired"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Unauthenticated("Invalid refresh token"))
		return
	}
	if claims.Type != utils.TokenRefresh {
		apperror.Respond(c, apperror.Unauthenticated("Invalid token type"))
		return
	}
	id, err := claims.AccountID()
	if err != nil {
		apperror.Respond(c, apperror.Unauthenticated("Invalid refresh token"))
		return
	}

	acc, err := h.Resolver.ResolveByRoleAndID(c.Request.Context(), claims.AccountRole(), id)
	if errors.Is(err, services.ErrAccountNotFound) {
		apperror.Respond(c, apperror.Unauthenticated("Account not found"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Could not refresh token", err))
		return
	}
	if acc.AccountTokenVersion() != claims.Version {
		apperror.Respond(c, apperror.Unauthenticated("Token has been revoked"))
		return
	}

	access, err := h.Codec.Encode(acc.AccountID(), acc.AccountRole(), utils.TokenAccess, acc.AccountTokenVersion(), utils.AccessTokenTTL)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Could not generate token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

func (h *Handler) Me(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)
	c.JSON(http.StatusOK, gin.H{"user": acc.View()})
}

// selfOnly returns the caller when :id names the caller's own account.
func selfOnly(c *gin.Context) (models.Account, error) {
	acc, _ := middleware.CurrentAccount(c)
	id, err := idParam(c, "id", "Account")
	if err != nil {
		return nil, err
	}
	if id != acc.AccountID() {
		return nil, apperror.Forbidden("You can only access your own profile")
	}
	return acc, nil
}

func (h *Handler) GetProfile(c *gin.Context) {
	acc, err := selfOnly(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": acc.View()})
}

// ProfileUpdate lists every editable profile field. Keys outside the
// caller's role are ignored, as are keys not listed here.
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`

	Address *string `json:"address"`
	City    *string `json:"city"`

	Specialization *string   `json:"specialization"`
	LicenseNumber  *string   `json:"licenseNumber"`
	Qualification  *string   `json:"qualification"`
	Experience     *int      `json:"experience"`
	Fee            *int      `json:"fee"`
	Available      *bool     `json:"available"`
	Department     *string   `json:"department"`
	Bio            *string   `json:"bio"`
	Timings        *string   `json:"timings"`
	Languages      *[]string `json:"languages"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	acc, err := selfOnly(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	var req ProfileUpdate
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	ctx := c.Request.Context()
	switch a := acc.(type) {
	case *models.User:
		set(&a.FullName, req.FullName)
		set(&a.Phone, req.Phone)
		set(&a.Address, req.Address)
		set(&a.City, req.City)
		err = h.Store.SaveUser(ctx, a)
	case *models.Doctor:
		set(&a.FullName, req.FullName)
		set(&a.Phone, req.Phone)
		set(&a.Specialization, req.Specialization)
		set(&a.LicenseNumber, req.LicenseNumber)
		set(&a.Qualification, req.Qualification)
		set(&a.Experience, req.Experience)
		set(&a.Fee, req.Fee)
		set(&a.Available, req.Available)
		set(&a.Department, req.Department)
		set(&a.Bio, req.Bio)
		set(&a.Timings, req.Timings)
		set(&a.Languages, req.Languages)
		err = h.Store.SaveDoctor(ctx, a)
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to update profile", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": acc.View()})
}

// ChangePassword bumps the token version, which revokes every token issued
// before the change, and returns a fresh pair.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	acc, _ := middleware.CurrentAccount(c)
	if !utils.CheckPasswordHash(req.CurrentPassword, acc.AccountPasswordHash()) {
		apperror.Respond(c, apperror.InvalidCredentials("Current password is incorrect"))
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		apperror.Respond(c, apperror.Validation("New password must be at least %d characters", minPasswordLength))
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to hash password", err))
		return
	}

	ctx := c.Request.Context()
	switch a := acc.(type) {
	case *models.User:
		a.Password = hashed
		a.TokenVersion++
		err = h.Store.SaveUser(ctx, a)
	case *models.Doctor:
		a.Password = hashed
		a.TokenVersion++
		err = h.Store.SaveDoctor(ctx, a)
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to update password", err))
		return
	}

	pair, err := h.Codec.EncodePair(acc)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Could not generate token", err))
		return
	}
	h.Logger.Info("password changed", zap.String("role", string(acc.AccountRole())), zap.Int64("accountId", acc.AccountID()))
	c.JSON(http.StatusOK, gin.H{
		"message":      "Password changed successfully",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout is advisory: clients discard their tokens.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
