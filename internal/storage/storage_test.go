package storage

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func mustWord(t *testing.T, s *SQLiteStore, kanji, romaji, vietnamese string) int64 {
	t.Helper()
	id, err := s.CreateWord(&Word{
		Kanji:      kanji,
		Romaji:     romaji,
		Vietnamese: vietnamese,
		Parts:      []Part{{Kanji: kanji, Romaji: []string{romaji}}},
	})
	if err != nil {
		t.Fatalf("CreateWord failed: %v", err)
	}
	return id
}

func mustGroup(t *testing.T, s *SQLiteStore, name string) *Group {
	t.Helper()
	g, err := s.CreateGroup(name, "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return g
}

func mustActivity(t *testing.T, s *SQLiteStore) int64 {
	t.Helper()
	id, err := s.CreateActivity(&StudyActivity{Name: "Flashcards", URL: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	return id
}

func wordsCount(t *testing.T, s *SQLiteStore, groupID int64) int {
	t.Helper()
	g, err := s.GetGroup(groupID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if g == nil {
		t.Fatalf("group %d not found", groupID)
	}
	return g.WordsCount
}

func TestNewStore(t *testing.T) {
	store := newTestStore(t)
	if store.db == nil {
		t.Fatal("Database connection is nil")
	}

	var fk int
	if err := store.db.Get(&fk, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestNewStore_LogsFailedMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Older databases allowed several progress rows per word.
	legacy := strings.Replace(Schema, "word_id INTEGER NOT NULL UNIQUE,", "word_id INTEGER NOT NULL,", 1)
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(legacy); err != nil {
		t.Fatalf("legacy schema: %v", err)
	}
	db.MustExec("INSERT INTO words (kanji, romaji, vietnamese, parts) VALUES ('山', 'yama', 'núi', '[]')")
	db.MustExec("INSERT INTO word_progress (word_id, status) VALUES (1, 'new'), (1, 'learned')")
	db.Close()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if !strings.Contains(buf.String(), "portal: migration") || !strings.Contains(buf.String(), "idx_word_progress_word") {
		t.Errorf("expected migration failure in log, got %q", buf.String())
	}
}

func TestWordCRUD(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateWord(&Word{
		Kanji:      "食べる",
		Romaji:     "taberu",
		Vietnamese: "ăn",
		Parts:      []Part{{Kanji: "食", Romaji: []string{"ta"}}, {Kanji: "べ", Romaji: []string{"be"}}, {Kanji: "る", Romaji: []string{"ru"}}},
		JLPTLevel:  strPtr("N5"),
	})
	if err != nil {
		t.Fatalf("CreateWord failed: %v", err)
	}

	w, err := s.GetWord(id)
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if w == nil {
		t.Fatal("word not found after create")
	}
	if w.Kanji != "食べる" || len(w.Parts) != 3 || w.Parts[0].Romaji[0] != "ta" {
		t.Errorf("unexpected word: %+v", w)
	}
	if w.JLPTLevel == nil || *w.JLPTLevel != "N5" {
		t.Errorf("JLPTLevel = %v, want N5", w.JLPTLevel)
	}

	ok, err := s.UpdateWord(id, &Word{Kanji: "食べる", Romaji: "taberu", Vietnamese: "ăn uống"})
	if err != nil || !ok {
		t.Fatalf("UpdateWord = %v, %v", ok, err)
	}
	w, _ = s.GetWord(id)
	if w.Vietnamese != "ăn uống" {
		t.Errorf("Vietnamese = %q after update", w.Vietnamese)
	}
	if len(w.Parts) != 0 {
		t.Errorf("expected parts to be cleared, got %v", w.Parts)
	}

	ok, err = s.UpdateWord(9999, &Word{Kanji: "x"})
	if err != nil || ok {
		t.Errorf("UpdateWord on missing word = %v, %v, want false, nil", ok, err)
	}

	missing, err := s.GetWord(9999)
	if err != nil || missing != nil {
		t.Errorf("GetWord(9999) = %v, %v, want nil, nil", missing, err)
	}
}

func TestListWordsSearch(t *testing.T) {
	s := newTestStore(t)

	mustWord(t, s, "水", "mizu", "nước")
	id := mustWord(t, s, "大きい", "ookii", "to")
	mustWord(t, s, "準備", "junbi", "chuẩn bị")
	if err := s.SetWordLevel(id, "N4"); err != nil {
		t.Fatalf("SetWordLevel failed: %v", err)
	}

	tests := []struct {
		search string
		want   int
	}{
		{"", 3},
		{"MIZU", 1},
		{"nước", 1},
		{"n4", 1},
		{"準", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		page, err := s.ListWords(1, 10, tt.search)
		if err != nil {
			t.Fatalf("ListWords(%q) failed: %v", tt.search, err)
		}
		if page.Total != tt.want || len(page.Items) != tt.want {
			t.Errorf("ListWords(%q) total=%d items=%d, want %d", tt.search, page.Total, len(page.Items), tt.want)
		}
	}
}

func TestListWordsPagination(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 25; i++ {
		mustWord(t, s, "語", "go", "từ")
	}

	page, err := s.ListWords(3, 10, "")
	if err != nil {
		t.Fatalf("ListWords failed: %v", err)
	}
	if page.Total != 25 || len(page.Items) != 5 || page.Page != 3 || page.PerPage != 10 {
		t.Errorf("page 3: total=%d items=%d page=%d per_page=%d", page.Total, len(page.Items), page.Page, page.PerPage)
	}

	page, err = s.ListWords(0, 0, "")
	if err != nil {
		t.Fatalf("ListWords failed: %v", err)
	}
	if page.Page != 1 || page.PerPage != 10 || len(page.Items) != 10 {
		t.Errorf("clamped page: page=%d per_page=%d items=%d", page.Page, page.PerPage, len(page.Items))
	}
}

func TestListWordsPagesCoverAll(t *testing.T) {
	s := newTestStore(t)
	want := make(map[int64]bool)
	for i := 0; i < 23; i++ {
		want[mustWord(t, s, "語", "go", "từ")] = true
	}

	for _, perPage := range []int{1, 4, 10, 23, 50} {
		seen := make(map[int64]bool)
		for page := 1; ; page++ {
			p, err := s.ListWords(page, perPage, "")
			if err != nil {
				t.Fatalf("ListWords(%d, %d) failed: %v", page, perPage, err)
			}
			if len(p.Items) == 0 {
				break
			}
			for _, w := range p.Items {
				if seen[w.ID] {
					t.Errorf("per_page=%d: word %d listed twice", perPage, w.ID)
				}
				seen[w.ID] = true
			}
		}
		if len(seen) != len(want) {
			t.Errorf("per_page=%d: pages covered %d words, want %d", perPage, len(seen), len(want))
		}
		for id := range want {
			if !seen[id] {
				t.Errorf("per_page=%d: word %d missing", perPage, id)
			}
		}
	}
}

func TestGroupWordsCountTriggers(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "Core Verbs")
	w1 := mustWord(t, s, "行く", "iku", "đi")
	w2 := mustWord(t, s, "来る", "kuru", "đến")

	for _, w := range []int64{w1, w2} {
		added, err := s.AddWordToGroup(g.ID, w)
		if err != nil || !added {
			t.Fatalf("AddWordToGroup = %v, %v", added, err)
		}
	}
	if n := wordsCount(t, s, g.ID); n != 2 {
		t.Errorf("words_count = %d, want 2", n)
	}

	added, err := s.AddWordToGroup(g.ID, w1)
	if err != nil {
		t.Fatalf("AddWordToGroup duplicate failed: %v", err)
	}
	if added {
		t.Error("duplicate membership reported as added")
	}

	removed, err := s.RemoveWordFromGroup(g.ID, w1)
	if err != nil || !removed {
		t.Fatalf("RemoveWordFromGroup = %v, %v", removed, err)
	}
	if n := wordsCount(t, s, g.ID); n != 1 {
		t.Errorf("words_count after remove = %d, want 1", n)
	}

	removed, err = s.RemoveWordFromGroup(g.ID, w1)
	if err != nil || removed {
		t.Errorf("second remove = %v, %v, want false, nil", removed, err)
	}
}

func TestDeleteWordCascades(t *testing.T) {
	s := newTestStore(t)
	g1 := mustGroup(t, s, "A")
	g2 := mustGroup(t, s, "B")
	w := mustWord(t, s, "見る", "miru", "xem")
	keep := mustWord(t, s, "聞く", "kiku", "nghe")
	s.AddWordToGroup(g1.ID, w)
	s.AddWordToGroup(g2.ID, w)
	s.AddWordToGroup(g2.ID, keep)
	s.SetWordLevel(w, "N5")
	if _, err := s.CreateProgress(w, StatusNew, time.Now()); err != nil {
		t.Fatalf("CreateProgress failed: %v", err)
	}
	sess, err := s.CreateSession(g1.ID, mustActivity(t, s))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, _, err := s.RecordWordReview(sess.ID, w, true); err != nil {
		t.Fatalf("RecordWordReview failed: %v", err)
	}

	deleted, err := s.DeleteWord(w)
	if err != nil || !deleted {
		t.Fatalf("DeleteWord = %v, %v", deleted, err)
	}

	if n := wordsCount(t, s, g1.ID); n != 0 {
		t.Errorf("group A words_count = %d, want 0", n)
	}
	if n := wordsCount(t, s, g2.ID); n != 1 {
		t.Errorf("group B words_count = %d, want 1", n)
	}

	for table, query := range map[string]string{
		"word_groups":       "SELECT COUNT(*) FROM word_groups WHERE word_id = ?",
		"word_progress":     "SELECT COUNT(*) FROM word_progress WHERE word_id = ?",
		"jlpt_levels":       "SELECT COUNT(*) FROM jlpt_levels WHERE word_id = ?",
		"word_review_items": "SELECT COUNT(*) FROM word_review_items WHERE word_id = ?",
	} {
		var n int
		if err := s.db.Get(&n, query, w); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s still has %d rows for deleted word", table, n)
		}
	}

	deleted, err = s.DeleteWord(w)
	if err != nil || deleted {
		t.Errorf("second DeleteWord = %v, %v, want false, nil", deleted, err)
	}
}

func TestDeleteGroup(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "Temp")
	w := mustWord(t, s, "書く", "kaku", "viết")
	s.AddWordToGroup(g.ID, w)
	if _, err := s.CreateSession(g.ID, mustActivity(t, s)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	deleted, err := s.DeleteGroup(g.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteGroup = %v, %v", deleted, err)
	}
	if got, _ := s.GetGroup(g.ID); got != nil {
		t.Error("group still present after delete")
	}
	if word, _ := s.GetWord(w); word == nil {
		t.Error("deleting a group must not delete its words")
	}

	deleted, err = s.DeleteGroup(g.ID)
	if err != nil || deleted {
		t.Errorf("second DeleteGroup = %v, %v, want false, nil", deleted, err)
	}
}

func TestFindWordByKanjiLevel(t *testing.T) {
	s := newTestStore(t)
	id := mustWord(t, s, "水", "mizu", "nước")
	s.SetWordLevel(id, "N5")

	w, err := s.FindWordByKanjiLevel("水", "N5")
	if err != nil {
		t.Fatalf("FindWordByKanjiLevel failed: %v", err)
	}
	if w == nil || w.ID != id {
		t.Fatalf("FindWordByKanjiLevel = %+v, want id %d", w, id)
	}

	w, err = s.FindWordByKanjiLevel("水", "N4")
	if err != nil || w != nil {
		t.Errorf("different level matched: %+v, %v", w, err)
	}
}

func TestSessionsOrdering(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	a := mustActivity(t, s)

	var ids []int64
	for i := 0; i < 3; i++ {
		sess, err := s.CreateSession(g.ID, a)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		ids = append(ids, sess.ID)
	}

	page, err := s.ListSessions(1, 10)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Total)
	}
	for i, sess := range page.Items {
		if want := ids[len(ids)-1-i]; sess.ID != want {
			t.Errorf("item %d id = %d, want %d", i, sess.ID, want)
		}
	}

	last, err := s.LastStudySession()
	if err != nil {
		t.Fatalf("LastStudySession failed: %v", err)
	}
	if last == nil || last.ID != ids[2] {
		t.Errorf("LastStudySession = %+v, want id %d", last, ids[2])
	}

	byGroup, _ := s.ListSessionsByGroup(g.ID, 1, 2)
	if byGroup.Total != 3 || len(byGroup.Items) != 2 {
		t.Errorf("ListSessionsByGroup total=%d items=%d", byGroup.Total, len(byGroup.Items))
	}
	byActivity, _ := s.ListSessionsByActivity(a+100, 1, 10)
	if byActivity.Total != 0 {
		t.Errorf("unknown activity returned %d sessions", byActivity.Total)
	}
}

func TestRecordWordReviewTransitions(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	w := mustWord(t, s, "話す", "hanasu", "nói")
	s.AddWordToGroup(g.ID, w)
	sess, _ := s.CreateSession(g.ID, mustActivity(t, s))

	steps := []struct {
		correct bool
		want    string
	}{
		{true, StatusLearning},
		{true, StatusLearned},
		{true, StatusLearned},
		{false, StatusLearning},
	}
	for i, step := range steps {
		item, progress, err := s.RecordWordReview(sess.ID, w, step.correct)
		if err != nil {
			t.Fatalf("step %d: RecordWordReview failed: %v", i, err)
		}
		if item.IsCorrect != step.correct || item.SessionID != sess.ID {
			t.Errorf("step %d: unexpected item %+v", i, item)
		}
		if progress == nil || progress.Status != step.want {
			t.Errorf("step %d: status = %v, want %s", i, progress, step.want)
		}
		if progress != nil && progress.LastStudiedAt == nil {
			t.Errorf("step %d: last_studied_at not set", i)
		}
	}

	words, err := s.GetSessionWords(sess.ID, 1, 10)
	if err != nil {
		t.Fatalf("GetSessionWords failed: %v", err)
	}
	if words.Total != 4 {
		t.Errorf("session words total = %d, want 4", words.Total)
	}
}

func TestContinueLearning(t *testing.T) {
	s := newTestStore(t)
	a := mustActivity(t, s)
	open := mustGroup(t, s, "open")
	done := mustGroup(t, s, "done")
	w1 := mustWord(t, s, "山", "yama", "núi")
	w2 := mustWord(t, s, "川", "kawa", "sông")
	s.AddWordToGroup(open.ID, w1)
	s.AddWordToGroup(done.ID, w2)
	s.CreateProgress(w2, StatusLearned, time.Now())

	none, err := s.ContinueLearning()
	if err != nil || none != nil {
		t.Fatalf("ContinueLearning with no sessions = %v, %v", none, err)
	}

	openSess, _ := s.CreateSession(open.ID, a)
	s.CreateSession(done.ID, a)

	got, err := s.ContinueLearning()
	if err != nil {
		t.Fatalf("ContinueLearning failed: %v", err)
	}
	if got == nil || got.ID != openSess.ID {
		t.Errorf("ContinueLearning = %+v, want session %d", got, openSess.ID)
	}
}

func TestProgress(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	w1 := mustWord(t, s, "日", "hi", "ngày")
	w2 := mustWord(t, s, "月", "tsuki", "trăng")
	s.AddWordToGroup(g.ID, w1)
	s.AddWordToGroup(g.ID, w2)

	p, err := s.CreateProgress(w1, StatusNew, time.Now())
	if err != nil {
		t.Fatalf("CreateProgress failed: %v", err)
	}
	if p.Status != StatusNew || p.LastStudiedAt == nil {
		t.Errorf("unexpected progress %+v", p)
	}

	if _, err := s.CreateProgress(w1, StatusNew, time.Now()); err == nil {
		t.Error("second progress row for the same word should violate the unique constraint")
	}

	none, err := s.UpdateProgress(w1, nil, nil)
	if err != nil || none != nil {
		t.Errorf("UpdateProgress with no fields = %v, %v, want nil, nil", none, err)
	}

	old := time.Now().UTC().Add(-10 * 24 * time.Hour)
	learned := StatusLearned
	p, err = s.UpdateProgress(w1, &learned, &old)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if p.Status != StatusLearned {
		t.Errorf("status = %s, want learned", p.Status)
	}

	s.CreateProgress(w2, StatusLearned, time.Now())

	stale, err := s.ListLearnedOverDays(7)
	if err != nil {
		t.Fatalf("ListLearnedOverDays failed: %v", err)
	}
	if len(stale) != 1 || stale[0].WordID != w1 {
		t.Errorf("ListLearnedOverDays = %+v, want only word %d", stale, w1)
	}

	byStatus, _ := s.ListProgressByStatus(StatusLearned)
	if len(byStatus) != 2 {
		t.Errorf("ListProgressByStatus(learned) = %d rows, want 2", len(byStatus))
	}

	items, total, err := s.ListProgressByGroup(g.ID)
	if err != nil {
		t.Fatalf("ListProgressByGroup failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("ListProgressByGroup total=%d items=%d", total, len(items))
	}
}

func TestDashboard(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	a := mustActivity(t, s)
	w := mustWord(t, s, "本", "hon", "sách")
	s.AddWordToGroup(g.ID, w)

	last, err := s.LastStudySession()
	if err != nil || last != nil {
		t.Fatalf("LastStudySession on empty db = %v, %v", last, err)
	}

	sess, _ := s.CreateSession(g.ID, a)
	s.CreateSession(g.ID, a)
	s.RecordWordReview(sess.ID, w, true)
	s.RecordWordReview(sess.ID, w, false)

	progress, err := s.StudyProgress()
	if err != nil {
		t.Fatalf("StudyProgress failed: %v", err)
	}
	if progress.TotalSessions != 2 || progress.TotalWords != 1 || progress.AverageScore != 0 {
		t.Errorf("StudyProgress = %+v", progress)
	}

	quick, err := s.QuickStats()
	if err != nil {
		t.Fatalf("QuickStats failed: %v", err)
	}
	if quick.TotalWords != 1 || quick.TotalGroups != 1 || quick.TotalActivities != 1 {
		t.Errorf("QuickStats = %+v", quick)
	}

	graph, err := s.PerformanceGraph()
	if err != nil {
		t.Fatalf("PerformanceGraph failed: %v", err)
	}
	if len(graph) != 1 || graph[0].SessionsCount != 2 {
		t.Errorf("PerformanceGraph = %+v", graph)
	}
	if graph[0].Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("graph date = %s", graph[0].Date)
	}

	if err := s.FullReset(); err != nil {
		t.Fatalf("FullReset failed: %v", err)
	}
	progress, _ = s.StudyProgress()
	if progress.TotalSessions != 0 || progress.TotalWords != 0 {
		t.Errorf("after reset: %+v", progress)
	}
	if quick, _ := s.QuickStats(); quick.TotalWords != 1 {
		t.Error("FullReset must keep words")
	}
}

func TestPerformanceGraphLimit(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	a := mustActivity(t, s)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		day := base.AddDate(0, 0, i).Format("2006-01-02 15:04:05")
		if _, err := s.db.Exec("INSERT INTO study_sessions (group_id, study_activity_id, created_at) VALUES (?, ?, ?)", g.ID, a, day); err != nil {
			t.Fatalf("insert session failed: %v", err)
		}
	}

	graph, err := s.PerformanceGraph()
	if err != nil {
		t.Fatalf("PerformanceGraph failed: %v", err)
	}
	if len(graph) != 31 {
		t.Fatalf("len = %d, want 31", len(graph))
	}
	if graph[0].Date != "2024-02-09" {
		t.Errorf("first date = %s, want newest day 2024-02-09", graph[0].Date)
	}
}

func TestGroupStats(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	empty := mustGroup(t, s, "Empty")
	statuses := []string{StatusLearned, StatusLearning, StatusNew}
	for i, st := range statuses {
		w := mustWord(t, s, "字", "ji", "chữ")
		s.AddWordToGroup(g.ID, w)
		if _, err := s.CreateProgress(w, st, time.Now().Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("CreateProgress failed: %v", err)
		}
	}

	stats, err := s.GroupStats(g.ID)
	if err != nil {
		t.Fatalf("GroupStats failed: %v", err)
	}
	if stats.TotalWords != 3 || stats.LearnedWords != 1 || stats.LearningWords != 1 || stats.NewWords != 1 {
		t.Errorf("GroupStats = %+v", stats)
	}
	if stats.ProgressPercentage != 33.3 {
		t.Errorf("progress = %v, want 33.3", stats.ProgressPercentage)
	}
	if stats.LastStudied == nil {
		t.Error("last_studied not set")
	}

	emptyStats, err := s.GroupStats(empty.ID)
	if err != nil {
		t.Fatalf("GroupStats(empty) failed: %v", err)
	}
	if emptyStats.TotalWords != 0 || emptyStats.ProgressPercentage != 0 || emptyStats.LastStudied != nil {
		t.Errorf("empty group stats = %+v", emptyStats)
	}

	all, err := s.AllGroupsStats()
	if err != nil {
		t.Fatalf("AllGroupsStats failed: %v", err)
	}
	if len(all.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(all.Groups))
	}
	if all.Groups[1].TotalWords != 0 || all.Groups[1].Name != "Empty" {
		t.Errorf("empty group row = %+v", all.Groups[1])
	}
	if all.Overall.TotalWords != 3 || all.Overall.LearnedWords != 1 || all.Overall.OverallProgress != 33.3 {
		t.Errorf("overall = %+v", all.Overall)
	}
}

func TestGroupStats_TenWords(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "Ten")
	counts := map[string]int{StatusLearned: 4, StatusLearning: 2, StatusNew: 4}
	for _, st := range []string{StatusLearned, StatusLearning, StatusNew} {
		for i := 0; i < counts[st]; i++ {
			w := mustWord(t, s, "字", "ji", "chữ")
			if _, err := s.AddWordToGroup(g.ID, w); err != nil {
				t.Fatalf("AddWordToGroup failed: %v", err)
			}
			if _, err := s.CreateProgress(w, st, time.Now()); err != nil {
				t.Fatalf("CreateProgress failed: %v", err)
			}
		}
	}

	stats, err := s.GroupStats(g.ID)
	if err != nil {
		t.Fatalf("GroupStats failed: %v", err)
	}
	if stats.TotalWords != 10 || stats.LearnedWords != 4 || stats.LearningWords != 2 || stats.NewWords != 4 {
		t.Errorf("GroupStats = %+v", stats)
	}
	if stats.ProgressPercentage != 40.0 {
		t.Errorf("progress = %v, want 40.0", stats.ProgressPercentage)
	}
}

func TestCleanupOrphans(t *testing.T) {
	s := newTestStore(t)
	g := mustGroup(t, s, "G")
	w := mustWord(t, s, "花", "hana", "hoa")
	s.AddWordToGroup(g.ID, w)

	// Orphans can only appear when rows were written with foreign keys off.
	if _, err := s.db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("disable foreign keys failed: %v", err)
	}
	s.db.Exec("INSERT INTO word_groups (word_id, group_id) VALUES (999, ?)", g.ID)
	s.db.Exec("INSERT INTO word_progress (word_id, status) VALUES (999, 'new')")
	s.db.Exec("PRAGMA foreign_keys = ON")

	diag, err := s.Diagnostics()
	if err != nil {
		t.Fatalf("Diagnostics failed: %v", err)
	}
	if diag.WordsCount != 1 || diag.WordGroupsCount != 2 || diag.GroupsCount != 1 || len(diag.Groups) != 1 {
		t.Errorf("Diagnostics = %+v", diag)
	}

	r, err := s.CleanupOrphans()
	if err != nil {
		t.Fatalf("CleanupOrphans failed: %v", err)
	}
	if r.OrphanedWordGroups != 1 || r.OrphanedWordProgress != 1 || r.DeletedWordGroups != 1 || r.DeletedWordProgress != 1 {
		t.Errorf("CleanupOrphans = %+v", r)
	}
	if n := wordsCount(t, s, g.ID); n != 1 {
		t.Errorf("words_count after cleanup = %d, want 1", n)
	}
}

func TestVectors(t *testing.T) {
	s := newTestStore(t)

	rec := &VectorRecord{Collection: "jlpt_questions", ID: "vid_1_0", Document: "doc", Metadata: `{"a":1}`, Embedding: []byte{1, 2, 3, 4}, Model: "m"}
	if err := s.UpsertVector(rec); err != nil {
		t.Fatalf("UpsertVector failed: %v", err)
	}
	rec.Document = "doc2"
	if err := s.UpsertVector(rec); err != nil {
		t.Fatalf("UpsertVector (replace) failed: %v", err)
	}

	recs, err := s.ListVectors("jlpt_questions")
	if err != nil {
		t.Fatalf("ListVectors failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Document != "doc2" || len(recs[0].Embedding) != 4 {
		t.Errorf("ListVectors = %+v", recs)
	}
	if n, _ := s.CountVectors("other"); n != 0 {
		t.Errorf("other collection count = %d", n)
	}
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	files := map[string]string{
		"data_verbs.json":       `[{"kanji":"行く","romaji":"iku","vietnamese":"đi","parts":[{"kanji":"行","romaji":["i"]},{"kanji":"く","romaji":["ku"]}]}]`,
		"study_activities.json": `[{"name":"Typing","url":"http://localhost:8081","preview_url":"/p.png"}]`,
		"study_sessions.json":   `[{"group_id":1,"study_activity_id":1,"created_at":"2024-03-01 09:00:00"}]`,
		"jlpt_levels.json":      `[{"word_id":1,"level":"N5"}]`,
		"word_progress.json":    `[{"word_id":1,"status":"learning","last_studied_at":"2024-03-01T09:00:00"}]`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	empty, _ := s.IsEmpty()
	if !empty {
		t.Fatal("fresh store should be empty")
	}
	if err := s.Seed(dir); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	g, _ := s.GetGroup(1)
	if g == nil || g.Name != "Core Verbs" || g.WordsCount != 1 {
		t.Errorf("seeded group = %+v", g)
	}
	w, _ := s.GetWord(1)
	if w == nil || w.JLPTLevel == nil || *w.JLPTLevel != "N5" {
		t.Errorf("seeded word = %+v", w)
	}
	p, _ := s.GetProgress(1)
	if p == nil || p.Status != StatusLearning || p.LastStudiedAt == nil {
		t.Errorf("seeded progress = %+v", p)
	}
	last, _ := s.LastStudySession()
	if last == nil || last.CreatedAt.Year() != 2024 {
		t.Errorf("seeded session = %+v", last)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig(missing) failed: %v", err)
	}
	if cfg.Listening.Collection != "jlpt_questions" || cfg.Listening.SearchResults != 3 {
		t.Errorf("defaults not applied: %+v", cfg.Listening)
	}

	yamlPath := filepath.Join(dir, "config.yaml")
	os.WriteFile(yamlPath, []byte("database:\n  path: /tmp/a.db\nllm:\n  provider: groq\n"), 0644)
	cfg, err = LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig(yaml) failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/a.db" || cfg.LLM.Provider != "groq" || cfg.LLM.Model != "llama3" {
		t.Errorf("yaml config = %+v", cfg)
	}

	tomlPath := filepath.Join(dir, "config.toml")
	os.WriteFile(tomlPath, []byte("[listening]\ndata_dir = \"/srv/data\"\n"), 0644)
	cfg, err = LoadConfig(tomlPath)
	if err != nil {
		t.Fatalf("LoadConfig(toml) failed: %v", err)
	}
	if cfg.Listening.DataDir != "/srv/data" {
		t.Errorf("toml data_dir = %q", cfg.Listening.DataDir)
	}

	t.Setenv("PORTAL_DB_PATH", "/env/portal.db")
	cfg, err = LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig(env) failed: %v", err)
	}
	if cfg.Database.Path != "/env/portal.db" {
		t.Errorf("env override not applied: %q", cfg.Database.Path)
	}
}
