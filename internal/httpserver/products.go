package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"veggi-storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	UnitType    string          `json:"unitType"`
	Stock       int             `json:"stock"`
	Freshness   string          `json:"freshness"`
	Origin      string          `json:"origin"`
	Seller      string          `json:"seller"`
	Images      []string        `json:"images"`
}

var unitTypes = map[string]bool{"kg": true, "g": true, "piece": true, "bunch": true}

// toInput applies the admin form rules: name, seller and at least one image
// are required.
func (r productRequest) toInput() (domain.ProductInput, string) {
	name := strings.TrimSpace(r.Name)
	seller := strings.TrimSpace(r.Seller)
	if name == "" || seller == "" {
		return domain.ProductInput{}, "Name and seller are required"
	}
	if r.Price.IsNegative() {
		return domain.ProductInput{}, "Price cannot be negative"
	}
	if r.Stock < 0 {
		return domain.ProductInput{}, "Stock cannot be negative"
	}
	if r.UnitType != "" && !unitTypes[r.UnitType] {
		return domain.ProductInput{}, "Unit type must be kg, g, piece or bunch"
	}
	images := make([]domain.ProductImage, 0, len(r.Images))
	for _, img := range r.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, domain.ProductImage{Image: img})
		}
	}
	if len(images) == 0 {
		return domain.ProductInput{}, "At least one image is required"
	}
	return domain.ProductInput{
		Name:        name,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		UnitType:    r.UnitType,
		Stock:       r.Stock,
		Freshness:   r.Freshness,
		Origin:      r.Origin,
		Seller:      seller,
		Images:      images,
	}, ""
}

func (h *handlers) listProducts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	res, err := h.backend.ListProducts(c.Request.Context(), page, c.Query("search"))
	if err != nil {
		respondBackendError(c, h.logger, err, "Could not load products")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.backend.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, h.logger, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (h *handlers) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product payload")
		return
	}
	in, problem := req.toInput()
	if problem != "" {
		respondError(c, http.StatusUnprocessableEntity, problem)
		return
	}
	p, err := h.backend.CreateProduct(c.Request.Context(), sessionFrom(c).Token(), in)
	if err != nil {
		respondBackendError(c, h.logger, err, "Could not create product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": p})
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product payload")
		return
	}
	in, problem := req.toInput()
	if problem != "" {
		respondError(c, http.StatusUnprocessableEntity, problem)
		return
	}
	p, err := h.backend.UpdateProduct(c.Request.Context(), sessionFrom(c).Token(), c.Param("id"), in)
	if err != nil {
		respondBackendError(c, h.logger, err, "Could not update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.backend.DeleteProduct(c.Request.Context(), sessionFrom(c).Token(), c.Param("id")); err != nil {
		respondBackendError(c, h.logger, err, "Could not delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
