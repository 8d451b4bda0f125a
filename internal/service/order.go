package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/models"
	"github.com/Engarr/Windmill-backend/internal/repo"
)

type OrderService struct {
	DB     *gorm.DB
	Orders *repo.OrderRepo
}

type CheckoutInput struct {
	Name          string
	Surname       string
	CompanyName   string
	Street        string
	ZipCode       string
	City          string
	Phone         string
	Email         string
	Message       string
	PaymentMethod string
	DeliveryName  string
	DeliveryPrice float64
}

type OrderSummary struct {
	OrderID uint               `json:"order_id"`
	Total   float64            `json:"total"`
	Paid    bool               `json:"paid"`
	Items   []models.OrderItem `json:"items"`
}

// Checkout turns the user's cart into an order inside one transaction:
// the product snapshot, the order rows and the cart wipe land together
// or not at all.
func (s *OrderService) Checkout(ctx context.Context, userID uint, in CheckoutInput) (*OrderSummary, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return apperr.Internal("could not place order", err)
		}
		if len(items) == 0 {
			return apperr.Validation("no items in cart")
		}

		total := in.DeliveryPrice
		orderItems = make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product no longer available")
				}
				return apperr.Internal("could not place order", err)
			}
			total += float64(item.Quantity) * product.Price
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
			})
		}

		order = models.Order{
			UserID:        userID,
			Name:          in.Name,
			Surname:       in.Surname,
			CompanyName:   in.CompanyName,
			Street:        in.Street,
			ZipCode:       in.ZipCode,
			City:          in.City,
			Phone:         in.Phone,
			Email:         in.Email,
			Message:       in.Message,
			PaymentMethod: in.PaymentMethod,
			DeliveryName:  in.DeliveryName,
			DeliveryPrice: in.DeliveryPrice,
			Total:         total,
			CreatedAt:     time.Now().Unix(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Internal("could not place order", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
			if err := tx.Create(&orderItems[i]).Error; err != nil {
				return apperr.Internal("could not place order", err)
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal("could not place order", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	l.Info("order placed", "order_id", order.ID, "total", order.Total)
	return &OrderSummary{
		OrderID: order.ID,
		Total:   order.Total,
		Paid:    order.Paid,
		Items:   orderItems,
	}, nil
}

func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, []models.OrderItem, error) {
	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, apperr.NotFound("order not found")
		}
		return nil, nil, apperr.Internal("could not load order", err)
	}

	if order.UserID != userID {
		return nil, nil, apperr.Authorization("not authorized to view this order")
	}

	items, err := s.Orders.ItemsOf(ctx, orderID)
	if err != nil {
		return nil, nil, apperr.Internal("could not load order", err)
	}
	return order, items, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("could not load orders", err)
	}
	return orders, nil
}
