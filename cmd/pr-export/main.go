// pr-export writes all purchase requests with their latest assessment
// decision to an xlsx workbook for finance review.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     PR_EXPORT_PATH=pr-export.xlsx go run ./cmd/pr-export
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/workflow"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Purchase Requests"

func main() {
	outPath := os.Getenv("PR_EXPORT_PATH")
	if outPath == "" {
		outPath = "pr-export.xlsx"
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	ctx := context.Background()
	store := workflow.NewGormStore()

	prs, err := store.ListPurchaseRequests(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list purchase requests: %v\n", err)
		os.Exit(1)
	}

	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create sheet: %v\n", err)
		os.Exit(1)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Requester", "Cost Center", "Items", "Total", "Status", "Created At", "Latest Decision", "Latest Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for row, pr := range prs {
		latestDecision := ""
		latestReason := ""
		assessment, err := store.LatestAssessment(ctx, pr.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load latest assessment for %s: %v\n", pr.ID, err)
			os.Exit(1)
		}
		if assessment != nil {
			latestDecision = string(assessment.Decision)
			latestReason = assessment.Reason
		}

		values := []interface{}{
			pr.ID,
			pr.Requester,
			pr.CostCenter,
			len(pr.Items),
			pr.Total.InexactFloat64(),
			string(pr.Status),
			pr.CreatedAt.Format(time.RFC3339),
			latestDecision,
			latestReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save workbook: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("exported %d purchase requests to %s\n", len(prs), outPath)
}
