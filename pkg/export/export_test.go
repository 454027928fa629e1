package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ruslano69/bakread-studio/pkg/config"
)

// fakeStore records chunk sizes and can fail on a chosen chunk.
type fakeStore struct {
	chunks      []int
	failAtChunk int // 1-based, 0 means never
	ensured     bool
	truncated   bool
	closed      bool
}

func (f *fakeStore) EnsureTable(ctx context.Context, table string, cols []string) error {
	f.ensured = true
	return nil
}

func (f *fakeStore) Truncate(ctx context.Context, table string) error {
	f.truncated = true
	return nil
}

func (f *fakeStore) InsertChunk(ctx context.Context, table string, cols []string, rows [][]string) error {
	if f.failAtChunk > 0 && len(f.chunks)+1 == f.failAtChunk {
		return errors.New("connection reset")
	}
	f.chunks = append(f.chunks, len(rows))
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

// fakeEngine writes a CSV with n data rows to whatever --out it is given.
func fakeEngine(t *testing.T, n int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a shell script")
	}
	var rows strings.Builder
	rows.WriteString("Id,Name\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&rows, "%d,user%d\n", i, i)
	}
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --out) out="$2"; shift 2;;
    *) shift;;
  esac
done
cat > "$out" <<'CSV'
` + strings.TrimSuffix(rows.String(), "\n") + `
CSV
echo "Extraction finished"
`
	path := filepath.Join(t.TempDir(), "bakread")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testPlan(batch int, truncate bool) *Plan {
	return &Plan{
		Extraction: &config.ExtractionConfig{
			BackupFiles: []string{"x.bak"},
			Table:       "dbo.Orders",
		},
		Destination: Destination{Server: "srv", Database: "staging", WindowsAuth: true},
		TargetTable: "dbo.Orders_Import",
		BatchSize:   batch,
		CreateTable: true,
		Truncate:    truncate,
	}
}

func TestPipeline_ChunkedLoad(t *testing.T) {
	store := &fakeStore{}
	p := &Pipeline{
		Engine:    fakeEngine(t, 7),
		OpenStore: func(ctx context.Context, dst Destination) (Store, error) { return store, nil },
	}
	var progress []int
	p.OnProgress = func(inserted, total int) { progress = append(progress, inserted) }

	reports, err := p.Run(context.Background(), testPlan(3, true))
	if err != nil {
		t.Fatalf("Run: %v\nreports: %+v", err, reports)
	}
	wantChunks := []int{3, 3, 1}
	if len(store.chunks) != 3 || store.chunks[0] != 3 || store.chunks[1] != 3 || store.chunks[2] != 1 {
		t.Errorf("chunks = %v, want %v", store.chunks, wantChunks)
	}
	if !store.ensured || !store.truncated || !store.closed {
		t.Errorf("store lifecycle: ensured=%v truncated=%v closed=%v", store.ensured, store.truncated, store.closed)
	}
	if len(progress) != 3 || progress[2] != 7 {
		t.Errorf("progress = %v", progress)
	}

	last := reports[len(reports)-1]
	if last.Name != "load" || last.Status != StepOK || last.Rows != 7 {
		t.Errorf("load report = %+v", last)
	}
	for _, r := range reports {
		if r.Name == "extract" && r.Checksum == "" {
			t.Error("extract report missing checksum")
		}
	}
}

func TestPipeline_PartialFailureKeepsCommittedChunks(t *testing.T) {
	store := &fakeStore{failAtChunk: 2}
	p := &Pipeline{
		Engine:    fakeEngine(t, 7),
		OpenStore: func(ctx context.Context, dst Destination) (Store, error) { return store, nil },
	}
	reports, err := p.Run(context.Background(), testPlan(3, false))

	var serr *StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	if serr.Committed != 3 || serr.Total != 7 {
		t.Errorf("committed/total = %d/%d, want 3/7", serr.Committed, serr.Total)
	}
	last := reports[len(reports)-1]
	if last.Name != "load" || last.Status != StepFailed || last.Rows != 3 {
		t.Errorf("load report = %+v", last)
	}
}

func TestPipeline_CreateTableOffSkipsEnsure(t *testing.T) {
	store := &fakeStore{}
	p := &Pipeline{
		Engine:    fakeEngine(t, 2),
		OpenStore: func(ctx context.Context, dst Destination) (Store, error) { return store, nil },
	}
	plan := testPlan(0, false)
	plan.CreateTable = false
	reports, err := p.Run(context.Background(), plan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.ensured {
		t.Error("EnsureTable called with CreateTable off")
	}
	for _, r := range reports {
		if r.Name == "ensure_table" {
			t.Errorf("unexpected ensure_table report: %+v", r)
		}
	}
}

func TestPipeline_RemovesTempCSV(t *testing.T) {
	store := &fakeStore{}
	p := &Pipeline{
		Engine:    fakeEngine(t, 2),
		OpenStore: func(ctx context.Context, dst Destination) (Store, error) { return store, nil },
	}
	before := tempCSVCount(t)
	if _, err := p.Run(context.Background(), testPlan(0, false)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if after := tempCSVCount(t); after > before {
		t.Errorf("temp csv leaked: %d before, %d after", before, after)
	}
}

func tempCSVCount(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "bakstudio-export-*.csv"))
	if err != nil {
		t.Fatal(err)
	}
	return len(matches)
}

func TestPipeline_ArtifactRetention(t *testing.T) {
	store := &fakeStore{}
	artifact := filepath.Join(t.TempDir(), "kept", "orders.csv.zst")
	p := &Pipeline{
		Engine:    fakeEngine(t, 4),
		OpenStore: func(ctx context.Context, dst Destination) (Store, error) { return store, nil },
	}
	plan := testPlan(0, false)
	plan.ArtifactPath = artifact
	reports, err := p.Run(context.Background(), plan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(artifact); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
	last := reports[len(reports)-1]
	if last.Name != "artifact" || last.Status != StepOK {
		t.Errorf("artifact report = %+v", last)
	}
}

func TestPlan_Validate(t *testing.T) {
	p := testPlan(0, false)
	if err := p.Validate(); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
	p.TargetTable = "bad name; drop"
	if err := p.Validate(); err == nil {
		t.Error("invalid target table accepted")
	}
	p = testPlan(0, false)
	p.Destination.WindowsAuth = false
	if err := p.Validate(); err == nil {
		t.Error("sql auth without user accepted")
	}
	p = testPlan(-1, false)
	if err := p.Validate(); err == nil {
		t.Error("negative batch size accepted")
	}
}

func TestInsertStatement(t *testing.T) {
	got := insertStatement("dbo.Orders", []string{"Id", "Na]me"})
	want := "INSERT INTO [dbo].[Orders] ([Id], [Na]]me]) VALUES (?, ?)"
	if got != want {
		t.Errorf("insertStatement = %s, want %s", got, want)
	}
}

func TestSplitTableName(t *testing.T) {
	cases := []struct {
		in, schema, name string
	}{
		{"Orders", "dbo", "Orders"},
		{"sales.Orders", "sales", "Orders"},
		{"[sales].[Or ders]", "sales", "Or ders"},
	}
	for _, c := range cases {
		schema, name := splitTableName(c.in)
		if schema != c.schema || name != c.name {
			t.Errorf("splitTableName(%q) = %s.%s, want %s.%s", c.in, schema, name, c.schema, c.name)
		}
	}
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(Destination{Server: "srv\\inst", Database: "db", User: "sa", Password: "pw"})
	if !strings.Contains(dsn, "user id=sa") || !strings.Contains(dsn, "password=pw") {
		t.Errorf("dsn = %s", dsn)
	}
	dsn = buildDSN(Destination{Server: "srv", Database: "db", WindowsAuth: true})
	if !strings.Contains(dsn, "trusted_connection=yes") || strings.Contains(dsn, "password") {
		t.Errorf("dsn = %s", dsn)
	}
}
