package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Demo dataset shared by cmd/seed-demo and DEV_MODE. SKUs in the purchase
// requests line up with the inventory records so substitution and policy
// paths are exercisable out of the box.

func DemoPolicyConfigs() []PolicyConfig {
	return []PolicyConfig{
		{CostCenter: "CC-ENG", Budget: decimal.NewFromInt(25000), PerItemCap: decimal.NewFromInt(6000)},
		{CostCenter: "CC-MKT", Budget: decimal.NewFromInt(12000), PerItemCap: decimal.NewFromInt(4000)},
		{CostCenter: "CC-FIN", Budget: decimal.NewFromInt(8000), PerItemCap: decimal.NewFromInt(3000)},
	}
}

func DemoInventoryRecords() []InventoryRecord {
	return []InventoryRecord{
		// Laptops. LPT-13 is out of stock and drives substitution.
		{Sku: "LPT-13", Stock: 0, PreferredSupplier: "SUP-ACME", Alts: StringList{"LPT-14"}},
		{Sku: "LPT-14", Stock: 18, PreferredSupplier: "SUP-ACME", Alts: StringList{}},
		{Sku: "LPT-15", Stock: 6, PreferredSupplier: "SUP-OMEGA", Alts: StringList{"LPT-14"}},

		// Monitors.
		{Sku: "MON-27", Stock: 7, PreferredSupplier: "SUP-VIEW", Alts: StringList{"MON-27P"}},
		{Sku: "MON-27P", Stock: 2, PreferredSupplier: "SUP-VIEW", Alts: StringList{}},

		// Peripherals / SW.
		{Sku: "KB-ENG", Stock: 100, PreferredSupplier: "SUP-KEYS", Alts: StringList{}},
		{Sku: "MS-PRM", Stock: 50, PreferredSupplier: "SUP-SOFT", Alts: StringList{}},

		// Video gear, used to exercise the CC-MKT per-item cap.
		{Sku: "CAM-4K", Stock: 1, PreferredSupplier: "SUP-PIX", Alts: StringList{"CAM-4KP"}},
		{Sku: "CAM-4KP", Stock: 3, PreferredSupplier: "SUP-PIX", Alts: StringList{}},

		// Furniture.
		{Sku: "CHAIR-ERG", Stock: 8, PreferredSupplier: "SUP-FURN", Alts: StringList{"CHAIR-ERG-PRO"}},
		{Sku: "CHAIR-ERG-PRO", Stock: 4, PreferredSupplier: "SUP-FURN", Alts: StringList{}},
	}
}

func DemoSubstitutionPriorities() []SubstitutionPriority {
	return []SubstitutionPriority{
		{Sku: "LPT-13", Chain: StringList{"LPT-14", "LPT-15"}},
		{Sku: "MON-27", Chain: StringList{"MON-27P"}},
		{Sku: "CAM-4K", Chain: StringList{"CAM-4KP"}},
		{Sku: "CHAIR-ERG", Chain: StringList{"CHAIR-ERG-PRO"}},
	}
}

func DemoPurchaseRequests() []PurchaseRequest {
	prs := []PurchaseRequest{
		{
			Requester:  "alice@acme.io",
			CostCenter: "CC-ENG",
			Items: LineItems{
				{Sku: "LPT-13", Qty: 2, Price: decimal.NewFromInt(1100)}, // OOS, triggers substitution
				{Sku: "MON-27", Qty: 2, Price: decimal.NewFromInt(260)},
			},
			Status: PurchaseRequestStatusOpen,
		},
		{
			Requester:  "bob@acme.io",
			CostCenter: "CC-ENG",
			Items: LineItems{
				{Sku: "LPT-14", Qty: 3, Price: decimal.NewFromInt(1250)},
			},
			Status: PurchaseRequestStatusOpen,
		},
		{
			Requester:  "carol@acme.io",
			CostCenter: "CC-FIN",
			Items: LineItems{
				{Sku: "KB-ENG", Qty: 5, Price: decimal.NewFromInt(45)},
				{Sku: "MS-PRM", Qty: 5, Price: decimal.NewFromInt(75)},
			},
			Status: PurchaseRequestStatusApproved,
		},
		{
			Requester:  "dave@acme.io",
			CostCenter: "CC-MKT",
			Items: LineItems{
				{Sku: "CAM-4K", Qty: 4, Price: decimal.NewFromInt(1800)}, // per-item cap violation
			},
			Status: PurchaseRequestStatusOpen,
		},
		{
			Requester:  "eve@acme.io",
			CostCenter: "CC-MKT",
			Items: LineItems{
				{Sku: "CHAIR-ERG", Qty: 20, Price: decimal.NewFromInt(420)}, // budget-heavy
			},
			Status: PurchaseRequestStatusRejected,
		},
	}
	for i := range prs {
		prs[i].ID = uuid.NewString()
		prs[i].Total = prs[i].Items.Total()
	}
	return prs
}

// DemoRejectionAssessment is the seed assessment attached to the rejected PR.
func DemoRejectionAssessment(pr PurchaseRequest) Assessment {
	overBy := pr.Total.Sub(decimal.NewFromInt(12000))
	return Assessment{
		ID:       uuid.NewString(),
		PrId:     pr.ID,
		Decision: AssessmentDecisionReject,
		Reason:   "Over department budget; defer to next quarter.",
		Trace: Trace{
			{
				Tool:   "getPR",
				Args:   JSONMap{"id": pr.ID},
				Result: JSONMap{"ok": true},
			},
			{
				Tool:   "checkPolicy",
				Args:   JSONMap{"costCenter": "CC-MKT"},
				Result: JSONMap{"budget": 12000, "overBy": overBy.InexactFloat64()},
			},
		},
	}
}
