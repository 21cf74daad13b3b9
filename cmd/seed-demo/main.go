// seed-demo loads the demo dataset: policy configs per cost center,
// inventory records with substitution priorities, and five purchase
// requests in a mix of states (one with a seeded rejection assessment).
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"gorm.io/gorm/clause"
)

func main() {
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	policies := models.DemoPolicyConfigs()
	for i := range policies {
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&policies[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed policy config %s: %v\n", policies[i].CostCenter, err)
			os.Exit(1)
		}
	}
	fmt.Printf("policy configs: %d\n", len(policies))

	records := models.DemoInventoryRecords()
	for i := range records {
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed inventory record %s: %v\n", records[i].Sku, err)
			os.Exit(1)
		}
	}
	fmt.Printf("inventory records: %d\n", len(records))

	priorities := models.DemoSubstitutionPriorities()
	for i := range priorities {
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&priorities[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed substitution priority %s: %v\n", priorities[i].Sku, err)
			os.Exit(1)
		}
	}
	fmt.Printf("substitution priorities: %d\n", len(priorities))

	prs := models.DemoPurchaseRequests()
	for i := range prs {
		if err := db.Create(&prs[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed purchase request for %s: %v\n", prs[i].Requester, err)
			os.Exit(1)
		}
		if prs[i].Status == models.PurchaseRequestStatusRejected {
			assessment := models.DemoRejectionAssessment(prs[i])
			if err := db.Create(&assessment).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to seed assessment: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Printf("purchase request: %s (%s, %s)\n", prs[i].ID, prs[i].Requester, prs[i].Status)
	}

	fmt.Println("seed-demo complete.")
}
