package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/bidinote/internal/index"
	"github.com/starford/bidinote/internal/noteservice"
	"github.com/starford/bidinote/internal/testutil"
)

type env struct {
	dir    string
	db     *index.DB
	svc    *noteservice.Service
	syncer *Syncer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	logger := testutil.Logger()
	svc := noteservice.NewService(db, logger)
	return &env{dir: dir, db: db, svc: svc, syncer: NewSyncer(db, svc, store, logger)}
}

func (e *env) write(t *testing.T, rel, content string) {
	t.Helper()
	abs := filepath.Join(e.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// pageFor returns the page id imported from rel, or "".
func (e *env) pageFor(rel string) string {
	files, _ := e.db.VaultFiles(context.Background())
	return files[rel].PageID
}

func TestSync_ImportsAndLinksAcrossFiles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	// a.md sorts first, so its link target does not exist on the first pass.
	e.write(t, "a.md", "# Alpha\n\nsee [[Zed]]\n")
	e.write(t, "sub/z.md", "---\ntitle: Zed\naliases: [Z]\ntags: [letters]\n---\nlast letter\n")

	if err := e.syncer.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	a, z := e.pageFor("a.md"), e.pageFor("sub/z.md")
	if a == "" || z == "" {
		t.Fatalf("expected both files imported, got a=%q z=%q", a, z)
	}
	page, err := e.svc.GetPage(ctx, z)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Title != "Zed" || len(page.Aliases) != 1 || len(page.Tags) != 1 {
		t.Errorf("page = %+v", page.Page)
	}
	if page.Content != "last letter\n" {
		t.Errorf("content = %q", page.Content)
	}

	out, _ := e.svc.Outlinks(ctx, a)
	if len(out) != 1 || out[0].DstPageID != z {
		t.Errorf("outlinks = %+v, want one edge to %s", out, z)
	}
}

func TestSync_FrontmatterID(t *testing.T) {
	e := newEnv(t)
	e.write(t, "n.md", "---\nid: fixed-id\n---\nbody\n")
	if err := e.syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := e.pageFor("n.md"); got != "fixed-id" {
		t.Errorf("page id = %q, want fixed-id", got)
	}
}

func TestSync_UnchangedSkippedAndChangedKeepsID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.write(t, "n.md", "# Note\n\nfirst\n")
	_ = e.syncer.Sync(ctx)
	id := e.pageFor("n.md")
	before, _ := e.svc.GetPage(ctx, id)

	_ = e.syncer.Sync(ctx)
	same, _ := e.svc.GetPage(ctx, id)
	if !same.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("unchanged file should not be re-imported")
	}

	e.write(t, "n.md", "# Renamed\n\nsecond\n")
	_ = e.syncer.Sync(ctx)
	if got := e.pageFor("n.md"); got != id {
		t.Errorf("page id changed from %q to %q", id, got)
	}
	after, _ := e.svc.GetPage(ctx, id)
	if after.Title != "Renamed" {
		t.Errorf("title = %q", after.Title)
	}
}

func TestSync_RemovesStale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.write(t, "gone.md", "# Gone")
	_ = e.syncer.Sync(ctx)
	id := e.pageFor("gone.md")

	_ = os.Remove(filepath.Join(e.dir, "gone.md"))
	if err := e.syncer.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if e.pageFor("gone.md") != "" {
		t.Error("mapping should be removed")
	}
	if _, err := e.svc.GetPage(ctx, id); err == nil {
		t.Error("page should be deleted")
	}
}
