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

type CartHandler struct {
	Cart     *service.CartService
	Orders   *service.OrderService
	Producer mykafka.Publisher
}

func (h *CartHandler) publish(c echo.Context, topic string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	key := strconv.FormatUint(uint64(mwauth.UserID(c)), 10)
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "topic", topic, "error", err)
	}
}

type addToCartRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  uint `json:"quantity"`
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.Cart.Add(c.Request().Context(), mwauth.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	h.publish(c, "cart_events", map[string]any{
		"type":      "cart_item_added",
		"productId": req.ProductID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

// GetCartProducts works for anonymous callers too: they simply get an
// empty cart instead of an authentication error.
func (h *CartHandler) GetCartProducts(c echo.Context) error {
	if mwauth.IsAnonymous(c) {
		return c.JSON(http.StatusOK, echo.Map{"prodArr": []service.CartLine{}})
	}

	lines, err := h.Cart.Lines(c.Request().Context(), mwauth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"prodArr": lines})
}

func (h *CartHandler) IncreaseQty(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return apperr.Validation("invalid product id")
	}

	item, err := h.Cart.IncreaseQty(c.Request().Context(), mwauth.UserID(c), uint(productID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) DecreaseQty(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return apperr.Validation("invalid product id")
	}

	item, err := h.Cart.DecreaseQty(c.Request().Context(), mwauth.UserID(c), uint(productID))
	if err != nil {
		return err
	}
	if item == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "Produkt został usunięty z koszyka"})
	}
	return c.JSON(http.StatusOK, item)
}

type removeProductRequest struct {
	ProductID uint `json:"productId" validate:"required"`
}

func (h *CartHandler) RemoveProduct(c echo.Context) error {
	var req removeProductRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Cart.Remove(c.Request().Context(), mwauth.UserID(c), req.ProductID); err != nil {
		return err
	}

	h.publish(c, "cart_events", map[string]any{
		"type":      "cart_item_removed",
		"productId": req.ProductID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Produkt został usunięty z koszyka"})
}

type wishlistRequest struct {
	ProductID uint `json:"productId" validate:"required"`
}

func (h *CartHandler) WishlistAdd(c echo.Context) error {
	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Cart.WishlistAdd(c.Request().Context(), mwauth.UserID(c), req.ProductID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product added to wishlist"})
}

func (h *CartHandler) WishlistGet(c echo.Context) error {
	products, err := h.Cart.WishlistProducts(c.Request().Context(), mwauth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *CartHandler) WishlistRemove(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return apperr.Validation("invalid product id")
	}

	if err := h.Cart.WishlistRemove(c.Request().Context(), mwauth.UserID(c), uint(productID)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product removed from wishlist"})
}

type checkoutRequest struct {
	Name           string  `json:"name"          validate:"required"`
	Surname        string  `json:"surname"       validate:"required"`
	CompanyName    string  `json:"companyName"`
	Street         string  `json:"street"        validate:"required"`
	ZipCode        string  `json:"zipCode"       validate:"required"`
	City           string  `json:"city"          validate:"required"`
	Phone          string  `json:"phone"         validate:"required"`
	Email          string  `json:"email"         validate:"required,email"`
	Message        string  `json:"message"`
	PaymentMethod  string  `json:"paymentMethod" validate:"required"`
	DeliveryMethod struct {
		Name  string  `json:"name"  validate:"required"`
		Price float64 `json:"price"`
	} `json:"deliveryMethod"`
}

func (h *CartHandler) MakeOrder(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	summary, err := h.Orders.Checkout(c.Request().Context(), mwauth.UserID(c), service.CheckoutInput{
		Name:          req.Name,
		Surname:       req.Surname,
		CompanyName:   req.CompanyName,
		Street:        req.Street,
		ZipCode:       req.ZipCode,
		City:          req.City,
		Phone:         req.Phone,
		Email:         req.Email,
		Message:       req.Message,
		PaymentMethod: req.PaymentMethod,
		DeliveryName:  req.DeliveryMethod.Name,
		DeliveryPrice: req.DeliveryMethod.Price,
	})
	if err != nil {
		return err
	}

	h.publish(c, "order_events", map[string]any{
		"type":    "order_created",
		"orderId": summary.OrderID,
		"total":   summary.Total,
	})

	return c.JSON(http.StatusOK, summary)
}
