package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/finboard/finboard/internal/platform/db"
)

func main() {
	path := getenv("SQLITE_PATH", "erp_finance.db")
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, path, db.SQLiteOptions{Migrate: true})
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	fmt.Println("→ Seeding clients...")
	if err := seedClients(ctx, tx); err != nil {
		log.Fatalf("seed clients: %v", err)
	}
	fmt.Println("→ Seeding payables...")
	if err := seedPayables(ctx, tx); err != nil {
		log.Fatalf("seed payables: %v", err)
	}
	fmt.Println("→ Seeding receivables...")
	if err := seedReceivables(ctx, tx); err != nil {
		log.Fatalf("seed receivables: %v", err)
	}
	fmt.Println("→ Seeding ledger...")
	if err := seedLedger(ctx, tx); err != nil {
		log.Fatalf("seed ledger: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedClients(ctx context.Context, tx *sql.Tx) error {
	names := []string{"Alice Comércio", "Bob Serviços", "Carla Indústria", "Duarte Transportes", "Estrela Varejo", "Fábio Consultoria", "Gama Alimentos"}
	q := sq.Insert("clients").Columns("id", "name").Options("OR IGNORE")
	for i, name := range names {
		q = q.Values(i+1, name)
	}
	_, err := q.RunWith(tx).ExecContext(ctx)
	return err
}

func seedPayables(ctx context.Context, tx *sql.Tx) error {
	suppliers := []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Hooli", "Soylent", "Tyrell", "Cyberdyne", "Wonka", "Vandelay"}
	q := sq.Insert("payables").Columns("id", "supplier", "amount", "due_date", "status").Options("OR IGNORE")
	id := 1
	for month := 1; month <= 3; month++ {
		for i, supplier := range suppliers {
			amount := fmt.Sprintf("%d.%02d", 250+i*85+month*40, (i*17)%100)
			due := time.Date(2024, time.Month(month), 5+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			status := "Open"
			if month < 3 {
				status = "Paid"
			}
			q = q.Values(id, supplier, amount, due, status)
			id++
		}
	}
	_, err := q.RunWith(tx).ExecContext(ctx)
	return err
}

func seedReceivables(ctx context.Context, tx *sql.Tx) error {
	rows := []struct {
		clientID int
		amount   string
		status   string
	}{
		{1, "4200.00", "Settled"},
		{1, "1800.50", "Settled"},
		{2, "3150.00", "Settled"},
		{2, "900.00", "Pending"},
		{3, "2750.25", "Settled"},
		{4, "1200.00", "Settled"},
		{5, "980.00", "Settled"},
		{6, "640.40", "Settled"},
		{7, "5000.00", "Pending"},
		{7, "310.00", "Settled"},
	}
	q := sq.Insert("receivables").Columns("id", "client_id", "amount", "status", "date").Options("OR IGNORE")
	for i, row := range rows {
		date := time.Date(2024, time.Month(1+i%3), 10+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		q = q.Values(i+1, row.clientID, row.amount, row.status, date)
	}
	_, err := q.RunWith(tx).ExecContext(ctx)
	return err
}

func seedLedger(ctx context.Context, tx *sql.Tx) error {
	q := sq.Insert("ledger_entries").Columns("id", "date", "type", "amount").Options("OR IGNORE")
	id := 1
	for month := 1; month <= 6; month++ {
		for day := 3; day <= 24; day += 7 {
			date := time.Date(2024, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			q = q.Values(id, date, "Revenue", fmt.Sprintf("%d.00", 1500+month*120+day*10))
			id++
			q = q.Values(id, date, "Expense", fmt.Sprintf("%d.50", 900+month*75+day*6))
			id++
		}
	}
	_, err := q.RunWith(tx).ExecContext(ctx)
	return err
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
