package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=payout_reconciler_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultChannelID = "PayoutOps"
const defaultChannelKey = "PayoutOpsKey001"
const defaultEncryptionKey = "cnec-default-encryption-key-2024"
const defaultListenAddr = ":8080"
const defaultJapanExchangeRate = "10"
const defaultUSExchangeRate = "0.075"

type Config struct {
	// One DSN per origin store. The stores are independently operated;
	// by default all three point at one local database for development.
	BizDatabaseDSN    string
	KoreaDatabaseDSN  string
	LedgerDatabaseDSN string

	MigrationsDir string
	ListenAddr    string

	ChannelID  string
	ChannelKey string

	// EncryptionKey is the pgcrypto passphrase the origin store used to
	// encrypt resident registration numbers.
	EncryptionKey string
	// ExportPassphraseHash is a bcrypt hash gating the tax export
	// endpoints. Empty disables the gate.
	ExportPassphraseHash string

	// Fixed exchange rates per non-domestic region, points to the
	// region currency's minor unit. Rates are supplied, never fetched.
	ExchangeRates map[string]decimal.Decimal

	WorksWebhookURL string
}

func Load() (Config, error) {
	biz := strings.TrimSpace(os.Getenv("BIZ_DATABASE_DSN"))
	if biz == "" {
		biz = defaultConnectionString
	}

	korea := strings.TrimSpace(os.Getenv("KOREA_DATABASE_DSN"))
	if korea == "" {
		korea = biz
	}

	ledger := strings.TrimSpace(os.Getenv("LEDGER_DATABASE_DSN"))
	if ledger == "" {
		ledger = biz
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKey := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if channelKey == "" {
		channelKey = defaultChannelKey
	}

	encryptionKey := strings.TrimSpace(os.Getenv("ENCRYPTION_KEY"))
	if encryptionKey == "" {
		encryptionKey = defaultEncryptionKey
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	japanRate, err := exchangeRate("JAPAN_EXCHANGE_RATE", defaultJapanExchangeRate)
	if err != nil {
		return Config{}, err
	}

	usRate, err := exchangeRate("US_EXCHANGE_RATE", defaultUSExchangeRate)
	if err != nil {
		return Config{}, err
	}

	return Config{
		BizDatabaseDSN:       normalizeConnectionString(biz),
		KoreaDatabaseDSN:     normalizeConnectionString(korea),
		LedgerDatabaseDSN:    normalizeConnectionString(ledger),
		MigrationsDir:        filepath.Join("src", "migrations"),
		ListenAddr:           listenAddr,
		ChannelID:            channelID,
		ChannelKey:           channelKey,
		EncryptionKey:        encryptionKey,
		ExportPassphraseHash: strings.TrimSpace(os.Getenv("EXPORT_PASSPHRASE_HASH")),
		ExchangeRates: map[string]decimal.Decimal{
			"japan": japanRate,
			"us":    usRate,
		},
		WorksWebhookURL: strings.TrimSpace(os.Getenv("WORKS_WEBHOOK_URL")),
	}, nil
}

func exchangeRate(envKey, fallback string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		raw = fallback
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", envKey, raw, err)
	}
	if rate.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%s must be positive, got %q", envKey, raw)
	}

	return rate, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
