package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/logging"
	mwauth "github.com/Engarr/Windmill-backend/internal/middleware/auth"
	"github.com/Engarr/Windmill-backend/internal/mykafka"
	"github.com/Engarr/Windmill-backend/internal/service"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Contact  *service.ContactService
	Orders   *service.OrderService
	Producer mykafka.Publisher
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "topic", topic, "error", err)
	}
}

type signupRequest struct {
	Email          string `json:"email"          validate:"required,email"`
	Password       string `json:"password"       validate:"required,min=5,strongpassword"`
	RepeatPassword string `json:"repeatPassword" validate:"required,eqfield=Password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Svc.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.publish(c, "user_events", strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_registered",
		"userId": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User has been created",
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.publish(c, "user_events", strconv.FormatUint(uint64(res.UserID), 10), map[string]any{
		"type":   "user_logged_in",
		"userId": res.UserID,
	})

	return c.JSON(http.StatusOK, res)
}

type changePasswordRequest struct {
	OldPassword       string `json:"oldPassword"       validate:"required"`
	NewPassword       string `json:"newPassword"       validate:"required,min=5,strongpassword"`
	RepeatNewPassword string `json:"repeatNewPassword" validate:"required,eqfield=NewPassword"`
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := mwauth.UserID(c)
	if err := h.Svc.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been changed"})
}

type changeEmailRequest struct {
	Password string `json:"password" validate:"required"`
	NewEmail string `json:"newEmail" validate:"required,email"`
}

func (h *AuthHandler) ChangeEmail(c echo.Context) error {
	var req changeEmailRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := mwauth.UserID(c)
	if err := h.Svc.ChangeEmail(c.Request().Context(), userID, req.Password, req.NewEmail); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Email has been changed"})
}

type resetSendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ResetSend(c echo.Context) error {
	var req resetSendRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.RequestReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Reset code has been sent"})
}

type sendCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// SendCode verifies a reset code. The storefront contract predates the
// error taxonomy and expects 400 rather than 401 for a bad code, so the
// translation happens here instead of in the error handler.
func (h *AuthHandler) SendCode(c echo.Context) error {
	var req sendCodeRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := h.Svc.VerifyResetCode(c.Request().Context(), req.Code)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuthentication {
			return echo.NewHTTPError(http.StatusBadRequest, apperr.PublicMessage(err))
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"userId": userID})
}

type newPasswordRequest struct {
	UserID         uint   `json:"userId"         validate:"required"`
	NewPassword    string `json:"newPassword"    validate:"required,min=5,strongpassword"`
	RepeatPassword string `json:"repeatPassword" validate:"required,eqfield=NewPassword"`
}

func (h *AuthHandler) SendNewPassword(c echo.Context) error {
	var req newPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.SetNewPassword(c.Request().Context(), req.UserID, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been changed"})
}

type contactRequest struct {
	Subject  string `json:"subject"  validate:"required"`
	UserName string `json:"userName" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Message  string `json:"message"  validate:"required"`
}

func (h *AuthHandler) ContactMessage(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.Contact.Relay(c.Request().Context(), req.Subject, req.UserName, req.Email, req.Message)

	return c.JSON(http.StatusOK, echo.Map{"message": "Message has been sent"})
}

func (h *AuthHandler) GetOrder(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("orderId"))
	if err != nil || orderID <= 0 {
		return apperr.Validation("invalid order id")
	}

	order, items, err := h.Orders.Get(c.Request().Context(), mwauth.UserID(c), uint(orderID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"order": order, "items": items})
}

func (h *AuthHandler) GetOrders(c echo.Context) error {
	orders, err := h.Orders.ListByUser(c.Request().Context(), mwauth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}
