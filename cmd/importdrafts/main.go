package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/database"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/env"
)

const batchSize = 5

func main() {
	file := flag.String("file", "../drafts.json", "JSON file holding the drafts to import")
	fromStore := flag.Bool("from-store", false, "read the drafts array of a flat-file store document instead of a bare array")
	flag.Parse()

	env.SetupEnvFile()

	drafts, err := readDrafts(afero.NewOsFs(), *file, *fromStore)
	if err != nil {
		log.Printf("Failed to read %s: %v", *file, err)
		os.Exit(1)
	}
	log.Printf("Importing %d drafts from %s", len(drafts), *file)

	database.SetupDatabase()
	imported, err := importDrafts(context.Background(), database.GetDB(), drafts)
	if err != nil {
		log.Printf("Import stopped after %d drafts: %v", imported, err)
		os.Exit(1)
	}
	log.Printf("Imported %d drafts", imported)
}

// readDrafts loads either a bare draft array or, with fromStore, the drafts of a store document.
func readDrafts(fs afero.Fs, path string, fromStore bool) ([]models.Draft, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	if fromStore {
		var doc struct {
			Drafts []models.Draft `json:"drafts"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Drafts, nil
	}

	var drafts []models.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// importDrafts upserts drafts in batches, one transaction per batch, and
// returns how many were written before the first failing batch.
func importDrafts(ctx context.Context, db *gorm.DB, drafts []models.Draft) (int, error) {
	imported := 0
	for start := 0; start < len(drafts); start += batchSize {
		end := min(start+batchSize, len(drafts))
		batch := drafts[start:end]

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := repository.NewDraftRepository(tx)
			for i := range batch {
				if err := repo.Upsert(ctx, &batch[i]); err != nil {
					return fmt.Errorf("draft %d: %w", batch[i].ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return imported, fmt.Errorf("batch %d-%d: %w", start+1, end, err)
		}
		imported += len(batch)
		log.Printf("Imported drafts %d-%d", start+1, end)
	}
	return imported, nil
}
