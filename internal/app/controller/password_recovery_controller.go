package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sharkfund/sharkfund-backend/internal/app/service"
	apperrors "github.com/sharkfund/sharkfund-backend/internal/errors"
	"github.com/sharkfund/sharkfund-backend/internal/middleware"
)

type PasswordRecoveryController struct {
	recoveryService service.PasswordRecoveryService
}

func NewPasswordRecoveryController(recoveryService service.PasswordRecoveryService) *PasswordRecoveryController {
	return &PasswordRecoveryController{
		recoveryService: recoveryService,
	}
}

type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,number"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	CreatePassword  string `json:"create_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// jsonFieldNames maps validator struct field names to the JSON keys used
// in the error envelope.
var jsonFieldNames = map[string]string{
	"Email":           "email",
	"OTP":             "otp",
	"CreatePassword":  "create_password",
	"ConfirmPassword": "confirm_password",
}

// bindingErrors turns Gin binding failures into the field-scoped error
// envelope. Malformed JSON that never reaches validation is reported
// under "general".
func bindingErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{
			apperrors.GeneralKey: {"Invalid request body."},
		}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := jsonFieldNames[fe.Field()]
		if field == "" {
			field = apperrors.GeneralKey
		}

		var msg string
		switch {
		case fe.Tag() == "required":
			msg = "This field is required."
		case fe.Tag() == "email":
			msg = "Enter a valid email address."
		case field == "otp":
			msg = "OTP must be a 6-digit code."
		default:
			msg = "This value is invalid."
		}
		out[field] = append(out[field], msg)
	}
	return out
}

// ForgetPassword issues a one-time code and emails it to the account.
// POST /api/v1/forget-password/
func (ctrl *PasswordRecoveryController) ForgetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid forget-password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.Fields(c, http.StatusBadRequest, bindingErrors(err))
		return
	}

	if err := ctrl.recoveryService.RequestOTP(req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			log.Warn("Forget-password for unknown email", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.BadRequestField(c, "email", "No account found with this email address.")
		case errors.Is(err, service.ErrTooManyRequests):
			apperrors.General(c, http.StatusTooManyRequests, "Too many OTP requests. Please try again later.")
		default:
			log.Error("Failed to issue OTP", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OTP sent to your email.",
	})
}

// VerifyOTP checks a code without consuming it.
// POST /api/v1/verify-otp/
func (ctrl *PasswordRecoveryController) VerifyOTP(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid verify-otp request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.Fields(c, http.StatusBadRequest, bindingErrors(err))
		return
	}

	if err := ctrl.recoveryService.VerifyOTP(req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.BadRequestField(c, "email", "No account found with this email address.")
		case errors.Is(err, service.ErrOTPExpired):
			apperrors.BadRequestField(c, "otp", "OTP has expired.")
		case errors.Is(err, service.ErrInvalidOTP):
			apperrors.BadRequestField(c, "otp", "Invalid OTP.")
		default:
			log.Error("OTP verification failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OTP is Correct",
	})
}

// ResetPassword changes the credential and consumes the OTP atomically.
// POST /api/v1/reset-password/
func (ctrl *PasswordRecoveryController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset-password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.Fields(c, http.StatusBadRequest, bindingErrors(err))
		return
	}

	if err := ctrl.recoveryService.ResetPassword(req.Email, req.CreatePassword, req.ConfirmPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			apperrors.BadRequestField(c, "confirm_password", "Passwords do not match.")
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequestField(c, "create_password", "Password must be at least 8 characters long.")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.BadRequestField(c, "email", "No account found with this email address.")
		case errors.Is(err, service.ErrOTPExpired):
			apperrors.General(c, http.StatusBadRequest, "OTP has expired. Please request a new OTP.")
		case errors.Is(err, service.ErrNoValidOTP):
			apperrors.General(c, http.StatusBadRequest, "No valid OTP found. Please request a new OTP.")
		default:
			log.Error("Password reset failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}
