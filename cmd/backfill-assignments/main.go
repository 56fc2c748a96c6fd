// One-shot repair for data created before assignments were day-group scoped:
// every assignment an item holds is cloned across all day groups discovered
// in its slots, preserving the old one-operator-many-groups meaning. Safe to
// re-run; existing tuples are left alone.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"campaign-review-engine/internal/client"
	"campaign-review-engine/internal/config"
	"campaign-review-engine/internal/model"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDBClient(&cfg.Database)

	cloned := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var itemIDs []uint
		if err := tx.Model(&model.Item{}).Pluck("id", &itemIDs).Error; err != nil {
			return err
		}

		for _, itemID := range itemIDs {
			var groups []int
			err := tx.Model(&model.Slot{}).
				Where("item_id = ?", itemID).
				Distinct().
				Order("day_group").
				Pluck("day_group", &groups).Error
			if err != nil {
				return err
			}

			var assignments []*model.Assignment
			err = tx.Where("item_id = ? AND day_group IS NOT NULL", itemID).
				Find(&assignments).Error
			if err != nil {
				return err
			}

			for _, assignment := range assignments {
				for _, group := range groups {
					if group == *assignment.DayGroup {
						continue
					}

					var count int64
					err := tx.Model(&model.Assignment{}).
						Where("campaign_id = ? AND item_id = ? AND day_group = ? AND operator_id = ?",
							assignment.CampaignID, itemID, group, assignment.OperatorID).
						Count(&count).Error
					if err != nil {
						return err
					}
					if count > 0 {
						continue
					}

					g := group
					clone := &model.Assignment{
						CampaignID: assignment.CampaignID,
						ItemID:     itemID,
						DayGroup:   &g,
						OperatorID: assignment.OperatorID,
						AssignedBy: assignment.AssignedBy,
						AssignedAt: time.Now(),
					}
					if err := tx.Create(clone).Error; err != nil {
						return err
					}
					cloned++
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("backfill failed:", err)
	}

	log.Println("backfill complete, cloned", cloned, "assignments")
}
