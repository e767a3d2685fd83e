package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) listCategories(c *gin.Context) {
	categories, err := g.catalog.ListCategories(c.Request.Context())
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (g *Gateway) getCategory(c *gin.Context) {
	category, err := g.catalog.GetCategory(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (g *Gateway) createCategory(c *gin.Context) {
	var req service.CategoryInput
	if !g.bindJSON(c, &req) {
		return
	}

	category, err := g.catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// productFilter reads the catalog query string. Repeated keys build the
// condition, marketplace and brand sets; unknown enum values are dropped.
func productFilter(c *gin.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Conditions:   models.ParseEnums[models.Condition](c.QueryArray("condition")),
		Marketplaces: models.ParseEnums[models.Marketplace](c.QueryArray("marketplace")),
		Brands:       c.QueryArray("brand"),
		Search:       c.Query("search"),
	}

	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperr.ValidationError("Validation error").WithDetails("categoryId must be an integer")
		}
		filter.CategoryID = &id
	}
	for key, dest := range map[string]**float64{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, apperr.ValidationError("Validation error").WithDetails(key + " must be a number")
		}
		*dest = &v
	}
	return filter, nil
}

func (g *Gateway) listProducts(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		g.respondError(c, err)
		return
	}

	products, err := g.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (g *Gateway) getProduct(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}

	product, err := g.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) createProduct(c *gin.Context) {
	var req service.ProductInput
	if !g.bindJSON(c, &req) {
		return
	}

	product, err := g.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (g *Gateway) updateProduct(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}
	var req service.ProductPatch
	if !g.bindJSON(c, &req) {
		return
	}

	product, err := g.catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) deleteProduct(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}

	if err := g.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (g *Gateway) getInventory(c *gin.Context) {
	id, ok := g.idParam(c, "productId")
	if !ok {
		return
	}

	inv, err := g.catalog.GetInventory(c.Request.Context(), id)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (g *Gateway) setStock(c *gin.Context) {
	id, ok := g.idParam(c, "productId")
	if !ok {
		return
	}
	var req stockRequest
	if !g.bindJSON(c, &req) {
		return
	}

	inv, err := g.catalog.SetStock(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// idParam parses a positive integer path parameter, answering 400 otherwise.
func (g *Gateway) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		g.respondError(c, apperr.ValidationError("Invalid %s", name))
		return 0, false
	}
	return id, true
}
