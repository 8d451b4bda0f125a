package httpserver

import (
	"github.com/labstack/echo/v4"

	mwauth "github.com/Engarr/Windmill-backend/internal/middleware/auth"
	"github.com/Engarr/Windmill-backend/internal/tokens"
)

type Deps struct {
	Sessions    *tokens.SessionService
	AuthHandler *AuthHandler
	FeedHandler *FeedHandler
	CartHandler *CartHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	strict := mwauth.RequireSession(d.Sessions)
	permissive := mwauth.OptionalSession(d.Sessions)

	auth := e.Group("/auth")
	auth.PUT("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.PUT("/change-password", d.AuthHandler.ChangePassword, strict)
	auth.PUT("/change-email", d.AuthHandler.ChangeEmail, strict)
	auth.PUT("/contact", d.AuthHandler.ContactMessage)
	auth.PUT("/reset-send", d.AuthHandler.ResetSend)
	auth.PUT("/send-code", d.AuthHandler.SendCode)
	auth.PUT("/send-new-password", d.AuthHandler.SendNewPassword)
	auth.GET("/getOrder/:orderId", d.AuthHandler.GetOrder, strict)
	auth.GET("/getOrders", d.AuthHandler.GetOrders, strict)

	feed := e.Group("/feed")
	feed.GET("/user", d.FeedHandler.GetUser, permissive)
	feed.POST("/add-product", d.FeedHandler.AddProduct, strict)
	feed.GET("/products", d.FeedHandler.GetProducts)
	feed.GET("/products/:category", d.FeedHandler.GetCategoryProducts)
	feed.GET("/product/:productId", d.FeedHandler.GetProductDetails)
	feed.GET("/search", d.FeedHandler.SearchProducts)
	feed.PUT("/editProduct/:productId", d.FeedHandler.EditProduct, strict)
	feed.DELETE("/delete/:productId", d.FeedHandler.DeleteProduct, strict)

	cart := e.Group("/cartFeed")
	cart.PUT("/addToCart", d.CartHandler.AddToCart, strict)
	cart.GET("/getCartProducts", d.CartHandler.GetCartProducts, permissive)
	cart.PUT("/product-incQty/:id", d.CartHandler.IncreaseQty, strict)
	cart.PUT("/product-decQty/:id", d.CartHandler.DecreaseQty, strict)
	cart.DELETE("/deleteProduct", d.CartHandler.RemoveProduct, strict)
	cart.POST("/order", d.CartHandler.MakeOrder, strict)
	cart.PUT("/wishlist", d.CartHandler.WishlistAdd, strict)
	cart.GET("/wishlist", d.CartHandler.WishlistGet, strict)
	cart.DELETE("/wishlist/:productId", d.CartHandler.WishlistRemove, strict)
}
