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
	"github.com/Engarr/Windmill-backend/internal/repo"
	"github.com/Engarr/Windmill-backend/internal/search"
	"github.com/Engarr/Windmill-backend/internal/service"
	"github.com/Engarr/Windmill-backend/internal/util"
)

type FeedHandler struct {
	Catalog  *service.CatalogService
	Products *repo.ProductRepo
	Search   search.Searcher
	Producer mykafka.Publisher
}

func (h *FeedHandler) publish(c echo.Context, key string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "topic", "product_events", "error", err)
	}
}

// GetUser runs behind the permissive identity policy: anonymous callers
// get the well-known marker the storefront checks for.
func (h *FeedHandler) GetUser(c echo.Context) error {
	if mwauth.IsAnonymous(c) {
		return c.JSON(http.StatusOK, echo.Map{"userId": "notregistered"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"userId": strconv.FormatUint(uint64(mwauth.UserID(c)), 10),
	})
}

type productForm struct {
	Name        string  `validate:"required"`
	Description string  `validate:"required,max=1000"`
	Category    string  `validate:"required"`
	Price       float64 `validate:"required,gt=0"`
}

func (h *FeedHandler) bindProductForm(c echo.Context) (*productForm, error) {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return nil, apperr.Validation("price must be a positive number")
	}
	form := &productForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Price:       price,
	}
	if err := c.Validate(form); err != nil {
		return nil, err
	}
	return form, nil
}

func (h *FeedHandler) imageUpload(c echo.Context) (*service.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal("could not read uploaded image", err)
	}
	c.Response().After(func() { f.Close() })
	return &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	}, nil
}

func (h *FeedHandler) AddProduct(c echo.Context) error {
	form, err := h.bindProductForm(c)
	if err != nil {
		return err
	}
	img, err := h.imageUpload(c)
	if err != nil {
		return err
	}

	product, err := h.Catalog.Create(c.Request().Context(), mwauth.UserID(c), service.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Price:       form.Price,
	}, img)
	if err != nil {
		return err
	}

	h.publish(c, strconv.FormatUint(uint64(product.ID), 10), map[string]any{
		"type":      "product_created",
		"productId": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product has been created",
		"data":    product,
	})
}

func (h *FeedHandler) EditProduct(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return apperr.Validation("invalid product id")
	}

	form, err := h.bindProductForm(c)
	if err != nil {
		return err
	}
	img, err := h.imageUpload(c)
	if err != nil {
		return err
	}

	product, err := h.Catalog.Update(c.Request().Context(), mwauth.UserID(c), uint(productID), service.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Price:       form.Price,
	}, img)
	if err != nil {
		return err
	}

	h.publish(c, strconv.Itoa(productID), map[string]any{
		"type":      "product_updated",
		"productId": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product updated!", "product": product})
}

func (h *FeedHandler) DeleteProduct(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return apperr.Validation("invalid product id")
	}

	if err := h.Catalog.Delete(c.Request().Context(), mwauth.UserID(c), uint(productID)); err != nil {
		return err
	}

	h.publish(c, strconv.Itoa(productID), map[string]any{
		"type":      "product_deleted",
		"productId": productID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted."})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *FeedHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Products.List(c.Request().Context(), offset, limit)
	if err != nil {
		return apperr.Internal("could not load products", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Fetched products successfully.",
		"products": items,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *FeedHandler) GetCategoryProducts(c echo.Context) error {
	category := c.Param("category")
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Products.ListByCategory(c.Request().Context(), category, offset, limit)
	if err != nil {
		return apperr.Internal("could not load products", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Fetched products successfully.",
		"products": items,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *FeedHandler) GetProductDetails(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return apperr.Validation("invalid product id")
	}

	product, err := h.Catalog.Get(c.Request().Context(), uint(productID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"productDetail": product})
}

func (h *FeedHandler) SearchProducts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return apperr.Validation("query must not be empty")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := h.Search.Query(c.Request().Context(), q, from, limit)
	if err != nil {
		return apperr.Internal("search failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
