package workflow

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"gorm.io/gorm"
)

// Catalog is the read-only inventory provider the advisor depends on. It is
// injected rather than reached through a global so tests can substitute
// fixtures without touching shared state.
type Catalog interface {
	// Lookup returns the inventory record for a SKU, or ErrorRecordNotFound.
	Lookup(ctx context.Context, sku string) (*models.InventoryRecord, error)
	// SubstitutionChain returns the explicit priority override for the SKU
	// when present, else the SKU's own alts, else an empty chain.
	SubstitutionChain(ctx context.Context, sku string) ([]string, error)
}

type dbCatalog struct{}

// NewDBCatalog returns a Catalog backed by the inventory tables.
func NewDBCatalog() Catalog {
	return dbCatalog{}
}

func (dbCatalog) Lookup(ctx context.Context, sku string) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := config.GetDB().WithContext(ctx).Where("sku = ?", sku).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (c dbCatalog) SubstitutionChain(ctx context.Context, sku string) ([]string, error) {
	var priority models.SubstitutionPriority
	err := config.GetDB().WithContext(ctx).Where("sku = ?", sku).First(&priority).Error
	if err == nil {
		return priority.Chain, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record, err := c.Lookup(ctx, sku)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return record.Alts, nil
}

// FixtureCatalog is an in-memory Catalog for tests and DEV_MODE.
type FixtureCatalog struct {
	Records  map[string]models.InventoryRecord
	Priority map[string][]string
}

func NewFixtureCatalog(records []models.InventoryRecord, priorities []models.SubstitutionPriority) *FixtureCatalog {
	c := &FixtureCatalog{
		Records:  map[string]models.InventoryRecord{},
		Priority: map[string][]string{},
	}
	for _, r := range records {
		c.Records[r.Sku] = r
	}
	for _, p := range priorities {
		c.Priority[p.Sku] = p.Chain
	}
	return c
}

func (c *FixtureCatalog) Lookup(ctx context.Context, sku string) (*models.InventoryRecord, error) {
	record, ok := c.Records[sku]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	return &record, nil
}

func (c *FixtureCatalog) SubstitutionChain(ctx context.Context, sku string) ([]string, error) {
	if chain, ok := c.Priority[sku]; ok {
		return chain, nil
	}
	if record, ok := c.Records[sku]; ok {
		return record.Alts, nil
	}
	return []string{}, nil
}
