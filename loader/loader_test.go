package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", "[]")
	writeFile(t, dir, "sub/b.json", "[]")
	writeFile(t, dir, "sub/c.csv", "npi,chain\n")
	writeFile(t, dir, "sub/ignore.txt", "")

	files, err := Files([]string{dir}, ".json")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 json files, got %d: %v", len(files), files)
	}

	files, err = Files([]string{dir, "/nonexistent/path"}, ".json", ".csv")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
}

func TestFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pharmacies.csv", "npi,chain\n")

	files, err := Files([]string{path}, ".csv")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("expected [%s], got %v", path, files)
	}
}

func TestLoadPharmaciesCSV(t *testing.T) {
	dir := t.TempDir()
	// BOM, mixed-case header, npi header variant.
	writeFile(t, dir, "pharmacies.csv", "\uFEFFNPI,Chain\n111,cvs\n222,walgreens\n,orphan\n")

	got, err := LoadPharmacies([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadPharmacies: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pharmacies, got %d", len(got))
	}
	if got[0].NPI != "111" || got[0].Chain != "cvs" {
		t.Errorf("unexpected first pharmacy: %+v", got[0])
	}
}

func TestLoadPharmaciesCSVIDHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pharmacies.csv", "id,chain\n111,cvs\n")

	got, err := LoadPharmacies([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadPharmacies: %v", err)
	}
	if len(got) != 1 || got[0].NPI != "111" {
		t.Fatalf("unexpected pharmacies: %+v", got)
	}
}

func TestLoadPharmaciesCSVMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pharmacies.csv", "name,city\nfoo,nyc\n")

	if _, err := LoadPharmacies([]string{dir}, nil); err == nil {
		t.Fatal("expected error for missing id/chain columns")
	}
}

func TestLoadPharmaciesJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pharmacies.json",
		`[{"id":"111","chain":"cvs"},{"npi":"222","chain":"walgreens"},{"chain":"no-id"}]`)

	got, err := LoadPharmacies([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadPharmacies: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pharmacies, got %d: %+v", len(got), got)
	}
}

func TestLoadClaimsArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "claims.json", `[
		{"id":"c1","npi":"111","ndc":"d1","price":10.5,"quantity":30,"timestamp":"2024-01-01T00:00:00"},
		{"id":"c2","npi":"111","ndc":"d1","price":"1,024.00","quantity":60.0},
		{"id":"","npi":"111","ndc":"d1","price":1,"quantity":30},
		{"id":"c4","npi":"111","ndc":"d1","price":1,"quantity":0},
		{"id":"c5","npi":"111","ndc":"d1","price":1,"quantity":1.5},
		{"id":"c6","npi":"111","ndc":"d1","price":"bogus","quantity":30}
	]`)

	got, err := LoadClaims([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadClaims: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 claims, got %d: %+v", len(got), got)
	}
	if got[0].Price != 10.5 || got[0].Quantity != 30 {
		t.Errorf("unexpected first claim: %+v", got[0])
	}
	if got[1].Price != 1024 || got[1].Quantity != 60 {
		t.Errorf("unexpected second claim: %+v", got[1])
	}
}

func TestLoadClaimsNDJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "claims.json",
		`{"id":"c1","npi":"111","ndc":"d1","price":10,"quantity":30}
{"id":"c2","npi":"222","ndc":"d2","price":20,"quantity":60}
`)

	got, err := LoadClaims([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadClaims: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(got))
	}
}

func TestLoadClaimsMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "part1.json", `[{"id":"c1","npi":"111","ndc":"d1","price":10,"quantity":30}]`)
	writeFile(t, dir, "nested/part2.json", `[{"id":"c2","npi":"222","ndc":"d2","price":20,"quantity":60}]`)

	got, err := LoadClaims([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadClaims: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(got))
	}
}

func TestLoadClaimsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "claims.json", "")

	got, err := LoadClaims([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadClaims: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no claims, got %d", len(got))
	}
}

func TestLoadReverts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reverts.json", `[
		{"id":"r1","claim_id":"c1","timestamp":"2024-01-02T00:00:00"},
		{"id":"r2","claim_id":""},
		{"id":"r3","claim_id":"c2"}
	]`)

	got, err := LoadReverts([]string{dir}, nil)
	if err != nil {
		t.Fatalf("LoadReverts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reverts, got %d", len(got))
	}
	if got[0].ClaimID != "c1" {
		t.Errorf("unexpected first revert: %+v", got[0])
	}
}
