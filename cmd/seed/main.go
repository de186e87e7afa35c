// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"vendas/internal/core/types"
	"vendas/internal/domain/catalogs/customer"
	"vendas/internal/domain/catalogs/product"
	"vendas/internal/domain/catalogs/supplier"
	"vendas/internal/domain/ledger"
	"vendas/internal/domain/sales"
	"vendas/internal/infrastructure/storage/postgres"
	"vendas/internal/infrastructure/storage/postgres/catalog_repo"
	"vendas/internal/infrastructure/storage/postgres/ledger_repo"
	"vendas/internal/infrastructure/storage/postgres/sales_repo"
	"vendas/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	if err := seedDemoData(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txm := postgres.NewTxManager(pool)

	supplierSvc := supplier.NewService(catalog_repo.NewSupplierRepo(txm))
	customerSvc := customer.NewService(catalog_repo.NewCustomerRepo(txm))
	productRepo := catalog_repo.NewProductRepo(txm)
	productSvc := product.NewService(productRepo)

	ledgerSvc := ledger.NewService(ledger_repo.NewStockRepo(txm), txm)
	salesSvc := sales.NewService(sales_repo.NewSaleRepo(txm), productRepo, ledgerSvc, txm)

	sup := supplier.NewSupplier("Distribuidora Central", "12345678000190")
	sup.City = "São Paulo"
	sup.State = "SP"
	if err := supplierSvc.Create(ctx, sup); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	cust := customer.NewCustomer("Maria Silva", "12345678901")
	cust.City = "Campinas"
	cust.State = "SP"
	if err := customerSvc.Create(ctx, cust); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	demoProducts := []struct {
		description string
		price       string
		quantity    int64
	}{
		{"Teclado mecânico", "249.90", 40},
		{"Mouse óptico", "89.90", 120},
		{"Monitor 24\"", "899.00", 15},
	}

	var firstProduct *product.Product
	for _, dp := range demoProducts {
		p := product.NewProduct(dp.description, types.MustMoney(dp.price), dp.quantity, sup.ID)
		if err := productSvc.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %q: %w", dp.description, err)
		}
		if firstProduct == nil {
			firstProduct = p
		}
	}

	// Commit one demo sale to exercise the full transactional path
	saleID, err := salesSvc.Commit(ctx, sales.CommitInput{
		CustomerID: cust.ID,
		Date:       time.Now().UTC(),
		Note:       "demo sale",
		Lines: []sales.LineInput{
			{ProductID: firstProduct.ID, Quantity: 2},
		},
	})
	if err != nil {
		return fmt.Errorf("commit demo sale: %w", err)
	}

	log.Infow("demo data created",
		"supplier_id", sup.ID,
		"customer_id", cust.ID,
		"products", len(demoProducts),
		"sale_id", saleID,
	)

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
