package index

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/bidinote/internal/apperr"
	"github.com/starford/bidinote/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "bidinote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertPage(t *testing.T, db *DB, id, title string, tags ...string) models.Page {
	t.Helper()
	p, err := models.NewPage(id, title)
	if err != nil {
		t.Fatal(err)
	}
	p.SetTags(tags)
	if err := db.InsertPage(context.Background(), PageRecord{Page: p}); err != nil {
		t.Fatalf("InsertPage: %v", err)
	}
	return p
}

func saveBody(t *testing.T, db *DB, p models.Page, content string, blocks []models.Block, edges []models.Edge) {
	t.Helper()
	rec := PageRecord{Page: p, Content: content, Checksum: "cs-" + content}
	if err := db.CommitSave(context.Background(), rec, blocks, edges); err != nil {
		t.Fatalf("CommitSave: %v", err)
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"pages", "blocks", "edges", "vault_files"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestInsertAndGetPage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := insertPage(t, db, "p1", "Hello World", "go", "test")

	rec, err := db.GetPage(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if rec.Page.Title != "Hello World" || len(rec.Page.Tags) != 2 {
		t.Errorf("page = %+v", rec.Page)
	}
	if !rec.Page.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("updated_at = %v, want %v", rec.Page.UpdatedAt, p.UpdatedAt)
	}

	err = db.InsertPage(ctx, PageRecord{Page: p})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate insert err = %v, want ErrAlreadyExists", err)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetPage(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetPage_CorruptAliasesFails(t *testing.T) {
	db := testDB(t)
	insertPage(t, db, "p1", "Broken")
	if _, err := db.conn.Exec(`UPDATE pages SET aliases = '{not json' WHERE id = 'p1'`); err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetPage(context.Background(), "p1"); err == nil {
		t.Error("expected decode error for corrupt aliases")
	}
	if _, err := db.LoadPages(context.Background()); err == nil {
		t.Error("expected LoadPages to surface the decode error")
	}
}

func TestFindPageByTitle_OldestWins(t *testing.T) {
	db := testDB(t)
	insertPage(t, db, "b", "Same")
	insertPage(t, db, "a", "Same")

	p, err := db.FindPageByTitle(context.Background(), "Same")
	if err != nil {
		t.Fatalf("FindPageByTitle: %v", err)
	}
	if p.ID != "a" {
		t.Errorf("id = %q, want a", p.ID)
	}
}

func TestCommitSave_ReplacesBlocksAndEdges(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a := insertPage(t, db, "a", "A")
	insertPage(t, db, "b", "B")
	insertPage(t, db, "c", "C")

	saveBody(t, db, a, "v1",
		[]models.Block{
			{ID: "b1", PageID: "a", Text: "# Top", Anchor: "Top", Order: 0},
			{ID: "b2", PageID: "a", Text: "see [[B]]", Order: 1},
		},
		[]models.Edge{{SrcBlockID: "b2", SrcPageID: "a", DstPageID: "b", Type: models.EdgeLink, CreatedAt: time.Now()}},
	)
	saveBody(t, db, a, "v2",
		[]models.Block{{ID: "b3", PageID: "a", Text: "![[C]]", Order: 0}},
		[]models.Edge{
			{SrcBlockID: "b3", SrcPageID: "a", DstPageID: "c", Type: models.EdgeEmbed, Props: models.FollowProps, CreatedAt: time.Now()},
			{SrcPageID: "a", DstPageID: "c", Type: models.EdgeTransclusion, Props: models.FollowProps, CreatedAt: time.Now()},
		},
	)

	blocks, err := db.LoadBlocks(ctx, "a")
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != "b3" || blocks[0].Anchor != "" {
		t.Errorf("blocks = %+v", blocks)
	}

	out, _ := db.EdgesFrom(ctx, "a")
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing edges, got %d", len(out))
	}
	if out[0].Type != models.EdgeEmbed || string(out[0].Props) != `{"mode":"follow"}` {
		t.Errorf("edge[0] = %+v", out[0])
	}
	if out[1].SrcBlockID != "" {
		t.Errorf("transclusion edge should have no source block, got %q", out[1].SrcBlockID)
	}

	in, _ := db.EdgesTo(ctx, "b")
	if len(in) != 0 {
		t.Error("old edge should be removed on save")
	}

	rec, _ := db.GetPage(ctx, "a")
	if rec.Content != "v2" || rec.Checksum != "cs-v2" {
		t.Errorf("record = %+v", rec)
	}
}

func TestCommitSave_UnknownPageRollsBack(t *testing.T) {
	db := testDB(t)
	ghost, _ := models.NewPage("ghost", "Ghost")
	err := db.CommitSave(context.Background(), PageRecord{Page: ghost}, nil,
		[]models.Edge{{SrcPageID: "ghost", DstPageID: "x", Type: models.EdgeLink}})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	all, _ := db.LoadEdges(context.Background())
	if len(all) != 0 {
		t.Errorf("expected no edges after failed save, got %d", len(all))
	}
}

func TestBlockAnchorRoundTrip(t *testing.T) {
	db := testDB(t)
	a := insertPage(t, db, "a", "A")
	saveBody(t, db, a, "# Intro", []models.Block{{ID: "h", PageID: "a", Text: "# Intro", Anchor: "Intro"}}, nil)

	blocks, _ := db.LoadBlocks(context.Background(), "a")
	if len(blocks) != 1 || blocks[0].Anchor != "Intro" {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestDeletePage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a := insertPage(t, db, "a", "A")
	b := insertPage(t, db, "b", "B")
	saveBody(t, db, a, "x", []models.Block{{ID: "a1", PageID: "a", Text: "[[B]]"}},
		[]models.Edge{{SrcBlockID: "a1", SrcPageID: "a", DstPageID: "b", Type: models.EdgeLink}})
	saveBody(t, db, b, "y", nil,
		[]models.Edge{{SrcPageID: "b", DstPageID: "a", Type: models.EdgeLink}})
	_ = db.PutVaultFile(ctx, VaultFile{Path: "a.md", PageID: "a", Checksum: "1"})

	if err := db.DeletePage(ctx, "a"); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if _, err := db.GetPage(ctx, "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("page still present: %v", err)
	}
	blocks, _ := db.LoadBlocks(ctx, "a")
	edges, _ := db.LoadEdges(ctx)
	files, _ := db.VaultFiles(ctx)
	if len(blocks) != 0 || len(edges) != 0 || len(files) != 0 {
		t.Errorf("leftovers: blocks=%d edges=%d files=%d", len(blocks), len(edges), len(files))
	}

	if err := db.DeletePage(ctx, "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdatePageMeta(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := insertPage(t, db, "a", "Old")
	p.Rename("New")
	p.SetTags([]string{"x"})
	if err := db.UpdatePageMeta(ctx, p); err != nil {
		t.Fatalf("UpdatePageMeta: %v", err)
	}
	got, _ := db.GetPage(ctx, "a")
	if got.Page.Title != "New" || len(got.Page.Aliases) != 1 || got.Page.Aliases[0] != "Old" {
		t.Errorf("page = %+v", got.Page)
	}

	ghost, _ := models.NewPage("ghost", "G")
	if err := db.UpdatePageMeta(ctx, ghost); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListPages_TagFilter(t *testing.T) {
	db := testDB(t)
	insertPage(t, db, "1", "Beta", "Go")
	insertPage(t, db, "2", "Alpha", "go", "db")
	insertPage(t, db, "3", "Gamma", "db")

	pages, total, err := db.ListPages(context.Background(), 10, 0, "GO")
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if total != 2 || len(pages) != 2 || pages[0].Title != "Alpha" {
		t.Errorf("pages = %+v total = %d", pages, total)
	}

	pages, total, _ = db.ListPages(context.Background(), 1, 1, "")
	if total != 3 || len(pages) != 1 || pages[0].Title != "Beta" {
		t.Errorf("paged = %+v total = %d", pages, total)
	}
}

func TestLoadPages_OrderedByID(t *testing.T) {
	db := testDB(t)
	insertPage(t, db, "b", "B")
	insertPage(t, db, "a", "A")
	pages, err := db.LoadPages(context.Background())
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != "a" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestVaultFiles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.PutVaultFile(ctx, VaultFile{Path: "n.md", PageID: "p", Checksum: "1"})
	_ = db.PutVaultFile(ctx, VaultFile{Path: "n.md", PageID: "p", Checksum: "2"})

	files, err := db.VaultFiles(ctx)
	if err != nil {
		t.Fatalf("VaultFiles: %v", err)
	}
	if files["n.md"].Checksum != "2" {
		t.Errorf("files = %+v", files)
	}
	_ = db.DeleteVaultFile(ctx, "n.md")
	files, _ = db.VaultFiles(ctx)
	if len(files) != 0 {
		t.Errorf("expected no files, got %+v", files)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	s := insertPage(t, db, "s", "Search Me")
	saveBody(t, db, s, "body", []models.Block{{ID: "s1", PageID: "s", Text: "uniqueword appears here"}}, nil)

	results, err := db.Search(context.Background(), "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].PageID != "s" || results[0].BlockID != "s1" {
		t.Errorf("search results = %+v, want 1 hit for s1", results)
	}

	results, _ = db.Search(context.Background(), "   ", 10)
	if len(results) != 0 {
		t.Errorf("blank query should return nothing, got %+v", results)
	}
}
