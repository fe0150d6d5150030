package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/config"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	mongorepo "github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories/mongodb"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/services"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/utils"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/logger"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/mongodb"
)

// Imports a prize catalog from CSV into MongoDB. Existing prizes with the same id are
// replaced, including their counters.
func main() {
	logger.Init(logger.Options{Level: config.GetEnv("LOG_LEVEL", "info")})
	defer logger.Sync()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	mongoURI := config.GetEnv("MONGODB_URI", "")
	if mongoURI == "" {
		logger.Fatal("MONGODB_URI environment variable is required")
	}
	dbName := config.GetEnv("MONGODB_DATABASE", "wheelspin")
	dryRun := config.GetEnvAsBool("IMPORT_DRY_RUN", false)
	timeout := config.GetEnvAsDuration("IMPORT_TIMEOUT", 0)

	// Get CSV file path from command line arguments
	if len(os.Args) < 2 {
		logger.Fatal("CSV file path is required as a command line argument")
	}
	csvFilePath := os.Args[1]

	prizes, err := readCatalog(csvFilePath)
	if err != nil {
		logger.Fatal("Failed to read catalog", zap.String("file", csvFilePath), zap.Error(err))
	}
	logger.Info("Catalog parsed", zap.Int("prizes", len(prizes)))
	if dryRun {
		for _, p := range prizes {
			logger.Info("Prize", zap.String("id", p.ID), zap.String("label", p.Label),
				zap.Float64("weight", p.Weight), zap.Any("cap", p.Cap), zap.Bool("fallback", p.Fallback))
		}
		return
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, err := mongodb.NewClient(ctx, mongoURI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := mongorepo.NewPrizeRepository(client.Database(dbName))
	for _, p := range prizes {
		if err := repo.Upsert(ctx, p); err != nil {
			logger.Fatal("Failed to import prize", zap.String("id", p.ID), zap.Error(err))
		}
	}

	logger.Info("Catalog imported successfully", zap.Int("prizes", len(prizes)), zap.String("database", dbName))
}

func readCatalog(path string) ([]*models.Prize, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	prizes, err := utils.ParsePrizeCSV(file)
	if err != nil {
		return nil, err
	}
	if err := services.ValidateCatalog(prizes); err != nil {
		return nil, err
	}
	return prizes, nil
}
