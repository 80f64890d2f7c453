package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servewise-backend/internal/model"
	"servewise-backend/internal/service"
)

type CatalogController struct {
	CatalogService service.CatalogService
	Lifecycle      service.LifecycleManager
}

func NewCatalogController(catalogService service.CatalogService, lifecycle service.LifecycleManager) *CatalogController {
	return &CatalogController{CatalogService: catalogService, Lifecycle: lifecycle}
}

// created answers 201 for a stored item. A failed synthesis does not undo
// the item; it is reported as a warning.
func created(c *gin.Context, item interface{}, res *service.ItemCreated) {
	body := gin.H{"item": item, "synthesis": res.Report}
	if res.SynthesisErr != nil {
		body["warning"] = "item saved but lesson generation was incomplete: " + res.SynthesisErr.Error()
	}
	c.JSON(http.StatusCreated, body)
}

// CreateDish handles POST /restaurants/:id/dishes
func (cc *CatalogController) CreateDish(c *gin.Context) {
	restaurantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var dish model.Dish
	if err := c.ShouldBindJSON(&dish); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	res, err := cc.CatalogService.CreateDish(c.Request.Context(), restaurantID, &dish)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, dish, res)
}

// CreateWine handles POST /restaurants/:id/wines
func (cc *CatalogController) CreateWine(c *gin.Context) {
	restaurantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var wine model.Wine
	if err := c.ShouldBindJSON(&wine); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	res, err := cc.CatalogService.CreateWine(c.Request.Context(), restaurantID, &wine)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, wine, res)
}

// ListDishes handles GET /restaurants/:id/dishes
func (cc *CatalogController) ListDishes(c *gin.Context) {
	restaurantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	dishes, err := cc.CatalogService.ListDishes(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

// ListWines handles GET /restaurants/:id/wines
func (cc *CatalogController) ListWines(c *gin.Context) {
	restaurantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	wines, err := cc.CatalogService.ListWines(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wines)
}

// Archive handles POST /items/:kind/:item_id/archive
func (cc *CatalogController) Archive(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}
	n, err := cc.Lifecycle.ArchiveItem(c.Request.Context(), categoryOf(c.Param("kind")), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions_archived": n})
}

// Restore handles POST /items/:kind/:item_id/restore
func (cc *CatalogController) Restore(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}
	report, err := cc.Lifecycle.RestoreItem(c.Request.Context(), categoryOf(c.Param("kind")), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"questions_restored": report.QuestionsRestored, "synthesis": report.Synthesis}
	if report.SynthesisErr != nil {
		body["warning"] = "item restored but lesson top-up was incomplete: " + report.SynthesisErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

// Delete handles DELETE /items/:kind/:item_id
func (cc *CatalogController) Delete(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}
	report, err := cc.Lifecycle.HardDeleteItem(c.Request.Context(), categoryOf(c.Param("kind")), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
