package adminapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/orderstock/internal/domain"
	"github.com/talkincode/orderstock/pkg/common"
	"gorm.io/gorm"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// login verifies operator credentials and issues a bearer token for the
// /api group.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ? AND status = ?", payload.Username, common.ENABLED).First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !common.CheckPassword(opr.Password, payload.Password)) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}

	expire := time.Duration(appConfig.Web.JwtExpireHr)
	if expire <= 0 {
		expire = 24
	}
	claims := jwt.MapClaims{
		"uid":   opr.ID,
		"usr":   opr.Username,
		"level": opr.Level,
		"exp":   time.Now().Add(expire * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(appConfig.Web.Secret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())

	return ok(c, map[string]interface{}{
		"token":    token,
		"username": opr.Username,
		"level":    opr.Level,
	})
}
