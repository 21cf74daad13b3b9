package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/procurement_backend/workflow"
	"github.com/gin-gonic/gin"
)

type inventoryItemResponse struct {
	Sku               string   `json:"sku"`
	Stock             int      `json:"stock"`
	PreferredSupplier string   `json:"preferredSupplier"`
	AltSuppliers      []string `json:"altSuppliers"`
}

type substitutionRequest struct {
	Items []workflow.RequestedItem `json:"items" binding:"required,dive"`
}

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "procurement-backend"})
	}
}

func getInventoryHandler(catalog workflow.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := catalog.Lookup(c.Request.Context(), c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inventoryItemResponse{
			Sku:               record.Sku,
			Stock:             record.Stock,
			PreferredSupplier: record.PreferredSupplier,
			AltSuppliers:      record.Alts,
		})
	}
}

func substitutionHandler(catalog workflow.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body substitutionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": err.Error()})
			return
		}
		suggestions, err := workflow.ProposeSubstitutions(c.Request.Context(), catalog, body.Items)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
	}
}
