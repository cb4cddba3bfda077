package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeAnalyzer splits a word into one part per rune.
type fakeAnalyzer struct {
	calls int
}

func (f *fakeAnalyzer) Breakdown(word string) ([]storage.Part, string) {
	f.calls++
	var parts []storage.Part
	for _, r := range word {
		parts = append(parts, storage.Part{Kanji: string(r), Romaji: []string{"x"}})
	}
	return parts, "derived"
}

var yama = Record{
	Kanji:      "山",
	Romaji:     "yama",
	Vietnamese: "núi",
	JLPTLevel:  "N5",
	Parts:      []storage.Part{{Kanji: "山", Romaji: []string{"ya", "ma"}}},
}

func TestImport_NewAndExisted(t *testing.T) {
	store := newTestStore(t)
	im := New(store, nil)

	first, err := im.Import([]Record{yama}, "nature")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if first.Group.Name != "nature" || first.Group.Description != "Vocabulary for theme: nature" {
		t.Errorf("unexpected group: %+v", first.Group)
	}
	if len(first.Words) != 1 || first.Words[0].Status != StatusNew {
		t.Fatalf("unexpected words: %+v", first.Words)
	}

	p, err := store.GetProgress(first.Words[0].ID)
	if err != nil || p == nil || p.Status != storage.StatusNew {
		t.Errorf("expected new progress row, got %+v, %v", p, err)
	}

	second, err := im.Import([]Record{yama, {Kanji: "川", Romaji: "kawa", Vietnamese: "sông"}}, "mountains")
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if second.Words[0].Status != StatusExisted || second.Words[0].ID != first.Words[0].ID {
		t.Errorf("山 should be reused: %+v", second.Words[0])
	}
	if second.Words[1].Status != StatusNew || second.Words[1].JLPTLevel != "N5" {
		t.Errorf("川 should be new at N5: %+v", second.Words[1])
	}

	g, err := store.GetGroup(second.Group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if g.WordsCount != 2 {
		t.Errorf("words_count = %d, want 2", g.WordsCount)
	}
}

func TestImport_SameKanjiOtherLevelIsNew(t *testing.T) {
	store := newTestStore(t)
	im := New(store, nil)

	im.Import([]Record{yama}, "a")
	other := yama
	other.JLPTLevel = "N4"
	res, err := im.Import([]Record{other}, "b")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Words[0].Status != StatusNew {
		t.Errorf("different level should create a new word, got %s", res.Words[0].Status)
	}
}

func TestImport_FillsMissingReading(t *testing.T) {
	store := newTestStore(t)
	an := &fakeAnalyzer{}
	im := New(store, an)

	res, err := im.Import([]Record{{Kanji: "学校", Vietnamese: "trường học"}, yama}, "school")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if an.calls != 1 {
		t.Errorf("analyzer called %d times, want 1", an.calls)
	}
	w := res.Words[0]
	if w.Romaji != "derived" || len(w.Parts) != 2 || w.Parts[1].Kanji != "校" {
		t.Errorf("reading not derived: %+v", w)
	}

	stored, err := store.GetWord(w.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if stored.Romaji != "derived" || len(stored.Parts) != 2 {
		t.Errorf("stored word missing derived reading: %+v", stored)
	}
}

func TestImport_Validation(t *testing.T) {
	im := New(newTestStore(t), nil)

	if _, err := im.Import(nil, "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty records: expected validation error, got %v", err)
	}
	if _, err := im.Import([]Record{yama}, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty category: expected validation error, got %v", err)
	}
}

func TestReadFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	content := "kanji,romaji,vietnamese,jlpt_level\n水,mizu,nước,n5\n, ,\n準備,junbi,chuẩn bị\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Kanji != "水" || records[0].JLPTLevel != "N5" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].JLPTLevel != "" || records[1].Vietnamese != "chuẩn bị" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestImportFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.xlsx")
	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"水", "mizu", "nước", "N5"})
	f.SetSheetRow("Sheet1", "A2", &[]interface{}{"理解", "rikai", "hiểu", "N3"})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	f.Close()

	store := newTestStore(t)
	res, err := New(store, nil).ImportFile(path, "spreadsheet")
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if len(res.Words) != 2 || res.Words[1].Kanji != "理解" || res.Words[1].JLPTLevel != "N3" {
		t.Errorf("unexpected import: %+v", res.Words)
	}
}

func TestReadFile_Unsupported(t *testing.T) {
	if _, err := ReadFile("words.txt"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
