package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/models"
)

// GetCategories lists every category, alphabetically. The set is small and
// static so it is not paged.
// GET /api/categories
func GetCategories(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	categories := make([]models.Category, 0)
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, categories)
}
