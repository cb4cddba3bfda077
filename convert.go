package portal

import (
	"fmt"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/importer"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

func mapSlice[S, T any](in []S, f func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func pageFromInternal[S, T any](p *storage.Page[S], f func(S) T) *Page[T] {
	return &Page[T]{
		Items:   mapSlice(p.Items, f),
		Total:   p.Total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
}

func partsFromInternal(parts []storage.Part) []Part {
	return mapSlice(parts, func(p storage.Part) Part {
		return Part{Kanji: p.Kanji, Romaji: p.Romaji}
	})
}

func partsToInternal(parts []Part) []storage.Part {
	return mapSlice(parts, func(p Part) storage.Part {
		return storage.Part{Kanji: p.Kanji, Romaji: p.Romaji}
	})
}

func wordFromInternal(w storage.Word) Word {
	return Word{
		ID:         w.ID,
		Kanji:      w.Kanji,
		Romaji:     w.Romaji,
		Vietnamese: w.Vietnamese,
		Parts:      partsFromInternal(w.Parts),
		JLPTLevel:  w.JLPTLevel,
	}
}

func wordToInternal(in WordInput) *storage.Word {
	return &storage.Word{
		Kanji:      in.Kanji,
		Romaji:     in.Romaji,
		Vietnamese: in.Vietnamese,
		Parts:      partsToInternal(in.Parts),
		JLPTLevel:  in.JLPTLevel,
	}
}

func groupFromInternal(g storage.Group) Group {
	return Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		WordsCount:  g.WordsCount,
	}
}

func activityFromInternal(a storage.StudyActivity) StudyActivity {
	return StudyActivity{
		ID:              a.ID,
		Name:            a.Name,
		URL:             a.URL,
		PreviewURL:      a.PreviewURL,
		Description:     a.Description,
		ReleaseDate:     a.ReleaseDate,
		AverageDuration: a.AverageDuration,
		Focus:           a.Focus,
	}
}

func sessionFromInternal(s storage.StudySession) StudySession {
	return StudySession{
		ID:              s.ID,
		GroupID:         s.GroupID,
		StudyActivityID: s.StudyActivityID,
		CreatedAt:       s.CreatedAt,
	}
}

func reviewFromInternal(r storage.WordReviewItem) WordReview {
	return WordReview{
		ID:        r.ID,
		SessionID: r.SessionID,
		WordID:    r.WordID,
		Correct:   r.IsCorrect,
		CreatedAt: r.CreatedAt,
	}
}

func progressFromInternal(p storage.WordProgress) WordProgress {
	return WordProgress{
		ID:            p.ID,
		WordID:        p.WordID,
		Status:        p.Status,
		LastStudiedAt: p.LastStudiedAt,
	}
}

func groupStatsFromInternal(s storage.GroupStats) GroupStats {
	return GroupStats{
		TotalWords:         s.TotalWords,
		LearnedWords:       s.LearnedWords,
		LearningWords:      s.LearningWords,
		NewWords:           s.NewWords,
		LastStudied:        s.LastStudied,
		ProgressPercentage: s.ProgressPercentage,
	}
}

func importResultFromInternal(res *importer.Result) *ImportResult {
	out := &ImportResult{
		Message: fmt.Sprintf("Successfully imported %d words", len(res.Words)),
		ImportedWords: mapSlice(res.Words, func(w importer.ImportedWord) ImportedWord {
			return ImportedWord{
				ID:         w.ID,
				Kanji:      w.Kanji,
				Romaji:     w.Romaji,
				Vietnamese: w.Vietnamese,
				JLPTLevel:  w.JLPTLevel,
				Parts:      partsFromInternal(w.Parts),
				Status:     w.Status,
			}
		}),
	}
	if res.Group != nil {
		out.Group = groupFromInternal(*res.Group)
	}
	return out
}
