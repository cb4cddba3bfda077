package main

import (
	"net/http"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
)

// newServer wraps the router in the middleware chain.
func newServer(engine *portal.Engine, allowedOrigin string) http.Handler {
	return requestID(logging(recovery(cors(allowedOrigin, newRouter(engine)))))
}

// newRouter sets up all routes using Go 1.22+ enhanced routing.
func newRouter(engine *portal.Engine) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{engine: engine}

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /test-database", h.handleDiagnostics)
	mux.HandleFunc("POST /cleanup-orphaned-records", h.handleCleanup)

	// Words
	mux.HandleFunc("GET /api/words", h.handleWordList)
	mux.HandleFunc("POST /api/words", h.handleWordCreate)
	mux.HandleFunc("GET /api/words/{id}", h.handleWordGet)
	mux.HandleFunc("PUT /api/words/{id}", h.handleWordUpdate)
	mux.HandleFunc("DELETE /api/words/{id}", h.handleWordDelete)

	// Groups
	mux.HandleFunc("GET /api/groups", h.handleGroupList)
	mux.HandleFunc("POST /api/groups", h.handleGroupCreate)
	mux.HandleFunc("GET /api/groups/{id}", h.handleGroupGet)
	mux.HandleFunc("DELETE /api/groups/{id}", h.handleGroupDelete)
	mux.HandleFunc("GET /api/groups/{id}/words", h.handleGroupWords)
	mux.HandleFunc("POST /api/groups/{id}/words", h.handleGroupAddWord)
	mux.HandleFunc("DELETE /api/groups/{id}/words/{wordID}", h.handleGroupRemoveWord)
	mux.HandleFunc("GET /api/groups/{id}/study_sessions", h.handleSessionsByGroup)

	// Study activities
	mux.HandleFunc("GET /api/study_activities", h.handleActivityList)
	mux.HandleFunc("GET /api/study_activities/{id}", h.handleActivityGet)
	mux.HandleFunc("GET /api/study_activities/{id}/launch_info", h.handleLaunchInfo)
	mux.HandleFunc("GET /api/study_activities/{id}/study_sessions", h.handleSessionsByActivity)

	// Study sessions
	mux.HandleFunc("GET /api/study_sessions", h.handleSessionList)
	mux.HandleFunc("POST /api/study_sessions", h.handleSessionCreate)
	mux.HandleFunc("GET /api/study_sessions/continue_learning", h.handleContinueLearning)
	mux.HandleFunc("POST /api/study_sessions/reset_history", h.handleResetHistory)
	mux.HandleFunc("GET /api/study_sessions/{id}", h.handleSessionGet)
	mux.HandleFunc("GET /api/study_sessions/{id}/words", h.handleSessionWords)
	mux.HandleFunc("POST /api/study_sessions/{id}/record_review", h.handleRecordReview)

	// Dashboard
	mux.HandleFunc("GET /api/dashboard/last_study_session", h.handleLastSession)
	mux.HandleFunc("GET /api/dashboard/study_progress", h.handleStudyProgress)
	mux.HandleFunc("GET /api/dashboard/quick_stats", h.handleQuickStats)
	mux.HandleFunc("GET /api/dashboard/performance_graph", h.handlePerformanceGraph)
	mux.HandleFunc("POST /api/dashboard/full_reset", h.handleFullReset)

	// Word progress
	mux.HandleFunc("POST /api/word_progress", h.handleProgressCreate)
	mux.HandleFunc("GET /api/word_progress/{wordID}", h.handleProgressGet)
	mux.HandleFunc("PUT /api/word_progress/{wordID}", h.handleProgressUpdate)
	mux.HandleFunc("GET /api/word_progress/group/{id}", h.handleProgressByGroup)
	mux.HandleFunc("GET /api/word_progress/group/{id}/stats", h.handleGroupStats)
	mux.HandleFunc("GET /api/word_progress/all-groups/stats", h.handleAllGroupsStats)
	mux.HandleFunc("GET /api/word_progress/status/{status}", h.handleProgressByStatus)
	mux.HandleFunc("GET /api/word_progress/learned/over/{days}", h.handleLearnedOverDays)
	mux.HandleFunc("POST /api/word_progress/reminders", h.handleReminders)

	// Vocabulary generation and import
	mux.HandleFunc("POST /api/generate_words", h.handleGenerateWords)
	mux.HandleFunc("POST /api/import_words", h.handleImportWords)

	// Listening pipeline
	mux.HandleFunc("POST /api/listening/get_transcript", h.handleGetTranscript)
	mux.HandleFunc("POST /api/listening/split_transcript", h.handleSplitTranscript)
	mux.HandleFunc("POST /api/listening/structure_section", h.handleStructureSection)
	mux.HandleFunc("POST /api/listening/index_questions", h.handleIndexQuestions)
	mux.HandleFunc("POST /api/listening/search_questions", h.handleSearchQuestions)
	mux.HandleFunc("POST /api/listening/generate_question_from_conversation", h.handleGenerateQuestion)
	mux.HandleFunc("POST /api/listening/process_video", h.handleProcessVideo)

	return mux
}
