package models

import (
	"log"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&PurchaseRequest{},
		&Assessment{},
		&PolicyConfig{},
		&InventoryRecord{},
		&SubstitutionPriority{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
