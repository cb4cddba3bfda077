package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
)

// handlers holds dependencies for all HTTP handler methods.
type handlers struct {
	engine *portal.Engine
}

type errorBody struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

// --- Helper methods ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("portal-web: encode response: %v", err)
	}
}

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, portal.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, portal.ErrNotFound),
		errors.Is(err, portal.ErrTranscriptNotFound),
		errors.Is(err, portal.ErrVideoUnavailable):
		return http.StatusNotFound
	case errors.Is(err, portal.ErrTranscriptsDisabled):
		return http.StatusForbidden
	case errors.Is(err, portal.ErrUpstream), errors.Is(err, portal.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("portal-web: %s %s: %v id=%s", r.Method, r.URL.Path, err, requestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: (&portal.ValidationError{Field: field, Message: msg}).Error()})
}

// decodeBody reads a JSON request body into v. An empty body leaves v as is.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "body", "invalid JSON body")
		return false
	}
	return true
}

// pathID parses the int64 path parameter name.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, name, "invalid "+name)
		return 0, false
	}
	return id, true
}

func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func pageParams(r *http.Request) (page, perPage int) {
	return parseIntParam(r, "page", 1), parseIntParam(r, "per_page", 10)
}

func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Japanese Learning API",
		"version": "1.0.0",
	})
}

func (h *handlers) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Diagnostics()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) handleCleanup(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.CleanupOrphans()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Words ---

func (h *handlers) handleWordList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	words, err := h.engine.ListWords(page, perPage, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": words})
}

func (h *handlers) handleWordGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	word, err := h.engine.GetWord(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (h *handlers) handleWordCreate(w http.ResponseWriter, r *http.Request) {
	var in portal.WordInput
	if !decodeBody(w, r, &in) {
		return
	}
	word, err := h.engine.CreateWord(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, word)
}

func (h *handlers) handleWordUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in portal.WordInput
	if !decodeBody(w, r, &in) {
		return
	}
	word, err := h.engine.UpdateWord(id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (h *handlers) handleWordDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.engine.DeleteWord(id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Word deleted"})
}

// --- Groups ---

func (h *handlers) handleGroupList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	groups, err := h.engine.ListGroups(page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *handlers) handleGroupGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	group, err := h.engine.GetGroup(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *handlers) handleGroupCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	group, err := h.engine.CreateGroup(in.Name, in.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *handlers) handleGroupDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.engine.DeleteGroup(id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Group deleted"})
}

func (h *handlers) handleGroupWords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(r)
	words, err := h.engine.GetGroupWords(id, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

func (h *handlers) handleGroupAddWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		WordID int64 `json:"word_id"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.WordID <= 0 {
		badRequest(w, "word_id", "word_id is required")
		return
	}
	added, err := h.engine.AddWordToGroup(id, in.WordID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"added": added})
}

func (h *handlers) handleGroupRemoveWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	wordID, ok := pathID(w, r, "wordID")
	if !ok {
		return
	}
	if err := h.engine.RemoveWordFromGroup(id, wordID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Word removed from group"})
}

// --- Study activities ---

func (h *handlers) handleActivityList(w http.ResponseWriter, r *http.Request) {
	activities, err := h.engine.ListActivities()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
}

func (h *handlers) handleActivityGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.engine.GetActivity(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handlers) handleLaunchInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.engine.GetLaunchInfo(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// --- Study sessions ---

func (h *handlers) handleSessionList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	sessions, err := h.engine.ListSessions(page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *handlers) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.engine.GetSession(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) handleSessionsByActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(r)
	sessions, err := h.engine.ListSessionsByActivity(id, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *handlers) handleSessionsByGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(r)
	sessions, err := h.engine.ListSessionsByGroup(id, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *handlers) handleSessionWords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(r)
	words, err := h.engine.GetSessionWords(id, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

func (h *handlers) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GroupID         int64 `json:"group_id"`
		StudyActivityID int64 `json:"study_activity_id"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	s, err := h.engine.CreateSession(in.GroupID, in.StudyActivityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *handlers) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		WordID  int64 `json:"word_id"`
		Correct *bool `json:"correct"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Correct == nil {
		badRequest(w, "correct", "correct is required")
		return
	}
	res, err := h.engine.RecordReview(id, in.WordID, *in.Correct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ResetHistory(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Study history reset"})
}

func (h *handlers) handleContinueLearning(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.ContinueLearning()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- Dashboard ---

func (h *handlers) handleLastSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.LastStudySession()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) handleStudyProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.StudyProgress()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleQuickStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.QuickStats()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) handlePerformanceGraph(w http.ResponseWriter, r *http.Request) {
	days, err := h.engine.PerformanceGraph()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (h *handlers) handleFullReset(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.FullReset(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All study data reset"})
}

// --- Word progress ---

func (h *handlers) handleProgressCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		WordID int64  `json:"word_id"`
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := h.engine.CreateProgress(in.WordID, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handlers) handleProgressGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "wordID")
	if !ok {
		return
	}
	p, err := h.engine.GetProgress(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleProgressUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "wordID")
	if !ok {
		return
	}
	var in struct {
		Status        *string    `json:"status"`
		LastStudiedAt *time.Time `json:"last_studied_at"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := h.engine.UpdateProgress(id, in.Status, in.LastStudiedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		badRequest(w, "body", "no fields to update")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleProgressByGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.engine.ListProgressByGroup(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleGroupStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.engine.GroupStats(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) handleAllGroupsStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.AllGroupsStats()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) handleProgressByStatus(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.ListProgressByStatus(r.PathValue("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleLearnedOverDays(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.PathValue("days"))
	if err != nil {
		badRequest(w, "days", "invalid days")
		return
	}
	p, err := h.engine.ListLearnedOverDays(days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleReminders(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Days int `json:"days"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.SendReviewReminders(r.Context(), in.Days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Vocabulary generation and import ---

func (h *handlers) handleGenerateWords(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ThematicCategory string `json:"thematicCategory"`
		JLPTLevel        string `json:"jlptLevel"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.GenerateWords(r.Context(), in.ThematicCategory, in.JLPTLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleImportWords(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Words            []portal.GeneratedWord `json:"words"`
		ThematicCategory string                 `json:"thematicCategory"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.ImportWords(in.Words, in.ThematicCategory)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Listening pipeline ---

type listeningRequest struct {
	URL          string `json:"url"`
	VideoID      string `json:"video_id"`
	SectionNum   int    `json:"section_num"`
	Conversation string `json:"conversation"`
	K            int    `json:"k"`
}

func (h *handlers) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.FetchTranscript(r.Context(), in.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleSplitTranscript(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.SplitTranscript(in.VideoID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleStructureSection(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.StructureSection(r.Context(), in.VideoID, in.SectionNum)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleIndexQuestions(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	n, err := h.engine.IndexQuestions(r.Context(), in.VideoID, in.SectionNum)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": n})
}

func (h *handlers) handleSearchQuestions(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	qs, err := h.engine.SearchQuestions(r.Context(), in.Conversation, in.K)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

func (h *handlers) handleGenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	q, ok, err := h.engine.GenerateQuestion(r.Context(), in.Conversation)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		failed := false
		writeJSON(w, http.StatusInternalServerError, errorBody{Success: &failed, Error: "Could not generate question"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "question": q})
}

func (h *handlers) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	var in listeningRequest
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.engine.ProcessVideo(r.Context(), in.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
