package main

import (
	"fmt"
	"os"

	"github.com/codexx/academy/backend/internal/config"
	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/internal/store"
)

// Imports the legacy flat-file document into the relational database.
// Portfolio-level fields and skills go through the regular save path;
// projects and services are inserted only when the workspace has none,
// so re-running the import never duplicates rows.
func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	dataFile := cfg.Data.File
	if len(os.Args) > 1 {
		dataFile = os.Args[1]
	}

	files := store.NewFileStore(dataFile)
	dbStore := store.NewDBStore(models.GetDB())

	g, err := files.Global()
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", dataFile, err)
		os.Exit(1)
	}

	fmt.Printf("Found %d portfolios in %s\n\n", len(g.Portfolios), dataFile)

	imported := 0
	for username := range g.Portfolios {
		p, err := files.Load(username)
		if err != nil {
			fmt.Printf("Skipped %s: %v\n", username, err)
			continue
		}

		if err := dbStore.Save(username, p, false); err != nil {
			fmt.Printf("Failed to import %s: %v\n", username, err)
			continue
		}

		ws, err := dbStore.GetWorkspaceBySlug(username)
		if err != nil {
			fmt.Printf("Failed to resolve workspace %s: %v\n", username, err)
			continue
		}

		db := models.GetDB()

		var projectCount int64
		db.Model(&models.Project{}).Where("workspace_id = ?", ws.ID).Count(&projectCount)
		if projectCount == 0 {
			for _, v := range p.Projects {
				row := models.Project{
					WorkspaceID:      ws.ID,
					Title:            v.Title,
					Description:      v.Description,
					ShortDescription: v.ShortDescription,
					Content:          v.Content,
					Image:            v.Image,
					DemoURL:          v.DemoURL,
					GithubURL:        v.GithubURL,
					Technologies:     models.EncodeJSON(v.Technologies),
					Gallery:          models.EncodeJSON(v.Gallery),
					SkillRelated:     models.EncodeJSON(v.SkillRelated),
					ProjectType:      v.ProjectType,
					Badge:            v.Badge,
				}
				if err := db.Create(&row).Error; err != nil {
					fmt.Printf("Failed to import project %q for %s: %v\n", v.Title, username, err)
				}
			}
		}

		var serviceCount int64
		db.Model(&models.Service{}).Where("workspace_id = ?", ws.ID).Count(&serviceCount)
		if serviceCount == 0 {
			for _, v := range p.Services {
				row := models.Service{
					WorkspaceID:      ws.ID,
					Title:            v.Title,
					Description:      v.Description,
					ShortDescription: v.ShortDescription,
					Category:         v.Category,
					PricingType:      v.PricingType,
					PriceMin:         v.PriceMin,
					PriceMax:         v.PriceMax,
					Currency:         v.Currency,
					Deliverables:     models.EncodeJSON(v.Deliverables),
					Duration:         v.Duration,
					SkillsRequired:   models.EncodeJSON(v.SkillsRequired),
					Image:            v.Image,
					Gallery:          models.EncodeJSON(v.Gallery),
					IsActive:         v.IsActive,
					IsFeatured:       v.IsFeatured,
				}
				if err := db.Create(&row).Error; err != nil {
					fmt.Printf("Failed to import service %q for %s: %v\n", v.Title, username, err)
				}
			}
		}

		fmt.Printf("Imported %s (%d skills, %d projects, %d services)\n",
			username, len(p.Skills), len(p.Projects), len(p.Services))
		imported++
	}

	fmt.Printf("\nDone: %d of %d portfolios imported\n", imported, len(g.Portfolios))
}
