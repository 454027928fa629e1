package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *ExtractionConfig {
	return &ExtractionConfig{
		BackupFiles: []string{"/data/full.bak"},
		Table:       "dbo.Orders",
		Output:      "/tmp/orders.csv",
		Format:      FormatCSV,
		Mode:        ModeAuto,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingBackup(t *testing.T) {
	c := validConfig()
	c.BackupFiles = nil
	err := c.Validate(true)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "backup_files" {
		t.Errorf("field = %q, want backup_files", ve.Field)
	}
}

func TestValidate_MissingOutput(t *testing.T) {
	c := validConfig()
	c.Output = ""
	if err := c.Validate(true); err == nil {
		t.Fatal("expected error when output required")
	}
	if err := c.Validate(false); err != nil {
		t.Fatalf("output should be optional: %v", err)
	}
}

func TestValidate_RestoreNeedsTarget(t *testing.T) {
	c := validConfig()
	c.Mode = ModeRestore
	if err := c.Validate(true); err == nil {
		t.Fatal("restore mode without connection must fail validation")
	}
	c.Connection = &ConnectionTarget{Server: "localhost\\SQL2019", WindowsAuth: true}
	if err := c.Validate(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Connection.WindowsAuth = false
	if err := c.Validate(true); err == nil {
		t.Fatal("sql auth without user must fail validation")
	}
}

func TestValidate_Delimiter(t *testing.T) {
	c := validConfig()
	c.Filters.Delimiter = ";;"
	if err := c.Validate(true); err == nil {
		t.Fatal("multi-character delimiter must fail")
	}
	c.Filters.Delimiter = "|"
	if err := c.Validate(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTableName(t *testing.T) {
	good := []string{"Orders", "dbo.Orders", "[dbo].[My_Table]", "_tmp$1"}
	for _, name := range good {
		if err := ValidateTableName(name); err != nil {
			t.Errorf("ValidateTableName(%q) = %v, want nil", name, err)
		}
	}
	bad := []string{"", "  ", "a.b.c", "Orders; DROP TABLE x", "1table", "na me"}
	for _, name := range bad {
		if err := ValidateTableName(name); err == nil {
			t.Errorf("ValidateTableName(%q) = nil, want error", name)
		}
	}
}

func TestClone_Isolated(t *testing.T) {
	c := validConfig()
	c.Connection = &ConnectionTarget{Server: "srv", User: "sa"}
	clone := c.Clone()
	clone.BackupFiles[0] = "/other.bak"
	clone.Connection.User = "other"
	if c.BackupFiles[0] != "/data/full.bak" {
		t.Error("clone shares backup file slice")
	}
	if c.Connection.User != "sa" {
		t.Error("clone shares connection pointer")
	}
}

func TestProfile_RoundTripStripsSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")

	p := &Profile{Name: "nightly", Extraction: *validConfig()}
	p.Extraction.Connection = &ConnectionTarget{Server: "srv", User: "sa", Password: "hunter2"}
	p.Extraction.TDE.CertPassword = "certpass"

	if err := SaveProfile(path, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, secret := range []string{"hunter2", "certpass"} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("profile file leaks secret %q", secret)
		}
	}

	got, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got.Name != "nightly" || got.Extraction.Table != "dbo.Orders" {
		t.Errorf("unexpected round trip: %+v", got)
	}
	if got.Extraction.Connection.User != "sa" {
		t.Error("non-secret connection fields must survive")
	}
}
