package main

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strconv"
	"testing"
)

func TestMigrationFilenamePattern(t *testing.T) {
	pattern := regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_init_core_tables.sql", true, 1, "init_core_tables"},
		{"0002_statement_imports.sql", true, 2, "statement_imports"},
		{"001_invalid.sql", false, 0, ""},        // wrong number format
		{"0001_test", false, 0, ""},              // missing .sql
		{"0001.sql", false, 0, ""},               // missing name
		{"invalid_0001_test.sql", false, 0, ""},  // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := pattern.FindStringSubmatch(tt.filename)
			if !tt.valid {
				if matches != nil {
					t.Fatalf("Expected %q not to match, got %v", tt.filename, matches)
				}
				return
			}
			if matches == nil {
				t.Fatalf("Expected %q to match", tt.filename)
			}
			version, err := strconv.Atoi(matches[1])
			if err != nil {
				t.Fatalf("Invalid version in %q: %v", tt.filename, err)
			}
			if version != tt.version {
				t.Errorf("Expected version %d, got %d", tt.version, version)
			}
			if matches[2] != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, matches[2])
			}
		})
	}
}

func TestMigrationChecksumConsistency(t *testing.T) {
	content := []byte("CREATE TABLE accounts (account_id INT64);")

	first := fmt.Sprintf("%x", sha256.Sum256(content))
	second := fmt.Sprintf("%x", sha256.Sum256(content))
	if first != second {
		t.Errorf("Same content produced different checksums: %s vs %s", first, second)
	}

	other := fmt.Sprintf("%x", sha256.Sum256([]byte("CREATE TABLE users (user_id INT64);")))
	if first == other {
		t.Error("Different content produced the same checksum")
	}
}
