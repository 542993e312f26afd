// Command seed provisions employee accounts. Employees cannot self-register;
// this command is the only way to create them.
//
//	seed -file employees.json
//
// The file holds a JSON array of {"name","idNumber","accountNumber","password"}.
// Accounts that already exist are skipped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
	"github.com/intlpay/payments-portal/internal/core/service"
	"github.com/intlpay/payments-portal/internal/core/token"
	"github.com/intlpay/payments-portal/internal/infrastructure/config"
	mongostore "github.com/intlpay/payments-portal/internal/infrastructure/db/mongo"
	"github.com/intlpay/payments-portal/pkg/logger"
)

type employeeRecord struct {
	Name          string `json:"name"`
	IDNumber      string `json:"idNumber"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

type provisioner interface {
	ProvisionEmployee(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
}

func main() {
	file := flag.String("file", "employees.json", "path to a JSON array of employees")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(logger.Options{Level: "info", Pretty: true, Service: "seed"})
	if err := run(ctx, *file, log); err != nil {
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, log zerolog.Logger) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open employees file: %w", err)
	}
	defer f.Close()

	employees, err := loadEmployees(f)
	if err != nil {
		return err
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	// Seeding never issues tokens, but the service needs an issuer.
	tokens, err := token.NewManager(cfg.Auth.JWTSecret, token.DefaultTTL, token.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return err
	}
	svc := service.NewAuthService(mongostore.NewUserRepository(db), tokens, cfg.Auth.BcryptCost, log)

	created, skipped, err := seed(ctx, svc, employees, log)
	if err != nil {
		return err
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("employees seeded")
	return nil
}

func loadEmployees(r io.Reader) ([]ports.RegisterInput, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []employeeRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}

	out := make([]ports.RegisterInput, 0, len(records))
	for _, rec := range records {
		out = append(out, ports.RegisterInput{
			Name:          rec.Name,
			IDNumber:      rec.IDNumber,
			AccountNumber: rec.AccountNumber,
			Password:      rec.Password,
		})
	}
	return out, nil
}

// seed provisions each employee in order. Conflicts are skipped; any other
// error stops the run.
func seed(ctx context.Context, p provisioner, employees []ports.RegisterInput, log zerolog.Logger) (created, skipped int, err error) {
	for i, emp := range employees {
		user, err := p.ProvisionEmployee(ctx, emp)
		switch {
		case domain.IsConflict(err):
			log.Warn().Err(err).Str("account_number", emp.AccountNumber).Msg("employee exists, skipping")
			skipped++
		case err != nil:
			return created, skipped, fmt.Errorf("employee %d (%s): %w", i+1, emp.AccountNumber, err)
		default:
			log.Info().Str("user_id", user.ID).Str("account_number", user.AccountNumber).Msg("employee created")
			created++
		}
	}
	return created, skipped, nil
}
