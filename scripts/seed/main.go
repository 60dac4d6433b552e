// Seeds the default habit set for a user. Usage:
//
//	DATABASE_URL=... go run ./scripts/seed -user <user-id>
package main

import (
	"context"
	"flag"
	"os"

	"habitflow/internal/database"
	"habitflow/internal/gateway"
	"habitflow/internal/models"
	"habitflow/pkg/logger"
)

var defaults = []models.HabitInput{
	{Name: "Fajr Namaz", Category: models.CategoryNamaz, Description: "Pray Fajr on time"},
	{Name: "Quran Reading", Category: models.CategoryQuran, Description: "Read at least one page"},
	{Name: "Morning Zikr", Category: models.CategoryZikr, Description: "Morning remembrance"},
}

func main() {
	userID := flag.String("user", "", "user id to own the seeded habits")
	flag.Parse()

	ctx := context.Background()
	if *userID == "" {
		logger.Error(ctx, "Missing -user flag")
		os.Exit(1)
	}

	db := database.InitDB(ctx)
	if db == nil {
		logger.Error(ctx, "Database not available")
		os.Exit(1)
	}
	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}

	gw := gateway.NewPostgres(db)
	for _, in := range defaults {
		h, err := gw.CreateHabit(ctx, models.Habit{
			Name:        in.Name,
			Category:    in.Category,
			Description: in.Description,
			OwnerID:     *userID,
		})
		if err != nil {
			logger.Error(ctx, "Seed insert failed", "name", in.Name, "error", err)
			os.Exit(1)
		}
		logger.Info(ctx, "Seeded habit", "id", h.ID, "name", h.Name)
	}
}
