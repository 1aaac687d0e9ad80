package database

import (
	"strings"
	"testing"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "gamehaqqs", Name: "gamehaqqs"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "host=localhost port=5432 user=gamehaqqs dbname=gamehaqqs sslmode=disable"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "pass",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(dsn,
		"host=db.example.com",
		"port=6543",
		"password=pass",
		"sslmode=require",
		"search_path=public",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
	if strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("override should replace default sslmode: %q", dsn)
	}
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "gamehaqqs", Name: "gamehaqqs"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "gamehaqqs@tcp(127.0.0.1:3306)/gamehaqqs?charset=utf8mb4&loc=UTC&parseTime=True"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildMySQLDSNWithPassword(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "user", Password: "secret", Name: "db", Host: "db.example.com", Port: 3307})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}
	if !strings.HasPrefix(dsn, "user:secret@tcp(db.example.com:3307)/db?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
}

func TestBuildDSNRequiresUserAndName(t *testing.T) {
	if _, err := buildPostgresDSN(Config{}); err == nil {
		t.Fatal("expected postgres error for missing credentials")
	}
	if _, err := buildMySQLDSN(Config{Host: "localhost"}); err == nil {
		t.Fatal("expected mysql error for missing credentials")
	}
}

func TestExplicitDSNWins(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://x"})
	if err != nil || dsn != "postgres://x" {
		t.Fatalf("expected explicit dsn, got %q (%v)", dsn, err)
	}
}

func containsAll(value string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}
