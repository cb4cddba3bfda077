package main

import portal "github.com/HuyDinhdmm/Japanese-language-portal"

// Input types for MCP tools. The SDK infers JSON Schema from these structs.
// Fields tagged omitempty are optional; the rest are required.

type pageInput struct {
	Page    int `json:"page,omitempty"     jsonschema:"Page number, starting at 1 (default 1)"`
	PerPage int `json:"per_page,omitempty" jsonschema:"Items per page (default 10)"`
}

type wordsListInput struct {
	Page    int    `json:"page,omitempty"     jsonschema:"Page number, starting at 1 (default 1)"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"Items per page (default 10)"`
	Search  string `json:"search,omitempty"   jsonschema:"Case-insensitive filter on kanji, romaji or Vietnamese meaning"`
}

type wordIDInput struct {
	WordID int64 `json:"word_id" jsonschema:"The word ID"`
}

type wordCreateInput struct {
	Kanji      string        `json:"kanji"                jsonschema:"The word as written in Japanese"`
	Romaji     string        `json:"romaji"               jsonschema:"Latin transcription"`
	Vietnamese string        `json:"vietnamese"           jsonschema:"Vietnamese meaning"`
	JLPTLevel  string        `json:"jlpt_level,omitempty" jsonschema:"JLPT level N5-N1"`
	Parts      []portal.Part `json:"parts,omitempty"      jsonschema:"Per-character readings"`
}

type groupWordsInput struct {
	GroupID int64 `json:"group_id"           jsonschema:"The group ID"`
	Page    int   `json:"page,omitempty"     jsonschema:"Page number, starting at 1 (default 1)"`
	PerPage int   `json:"per_page,omitempty" jsonschema:"Items per page (default 10)"`
}

type groupStatsInput struct {
	GroupID int64 `json:"group_id,omitempty" jsonschema:"The group ID. If omitted returns statistics for every group."`
}

type reviewInput struct {
	SessionID int64 `json:"session_id" jsonschema:"The study session ID"`
	WordID    int64 `json:"word_id"    jsonschema:"The reviewed word ID"`
	Correct   bool  `json:"correct"    jsonschema:"Whether the learner answered correctly"`
}

type progressStatusInput struct {
	Status string `json:"status" jsonschema:"Progress status: new, learning or learned"`
}

type generateWordsInput struct {
	ThematicCategory string `json:"thematic_category"    jsonschema:"Theme of the vocabulary, e.g. travel or food"`
	JLPTLevel        string `json:"jlpt_level,omitempty" jsonschema:"JLPT level N5-N1 (default N5)"`
	Save             bool   `json:"save,omitempty"       jsonschema:"Import the generated words into a new group named after the theme"`
}

type importWordsInput struct {
	ThematicCategory string                 `json:"thematic_category" jsonschema:"Name of the group to create"`
	Words            []portal.GeneratedWord `json:"words"             jsonschema:"Words to import"`
}

type conversationInput struct {
	Conversation string `json:"conversation"    jsonschema:"Japanese conversation text"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Number of similar questions to return (default from config)"`
}

type videoInput struct {
	URL string `json:"url" jsonschema:"YouTube watch or youtu.be URL of a JLPT listening video"`
}

type remindInput struct {
	Days int `json:"days,omitempty" jsonschema:"Minimum days since a learned word was last studied (default from config)"`
}

type emptyInput struct{}
