package storage

const Schema = `
CREATE TABLE IF NOT EXISTS words (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kanji TEXT NOT NULL,
    romaji TEXT NOT NULL,
    vietnamese TEXT NOT NULL,
    parts TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_words_kanji ON words(kanji);

CREATE TABLE IF NOT EXISTS groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    words_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS word_groups (
    word_id INTEGER NOT NULL,
    group_id INTEGER NOT NULL,
    PRIMARY KEY (word_id, group_id),
    FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_word_groups_group ON word_groups(group_id);

CREATE TABLE IF NOT EXISTS study_activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    preview_url TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    release_date TEXT,
    average_duration INTEGER,
    focus INTEGER,
    FOREIGN KEY (focus) REFERENCES groups(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS study_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL,
    study_activity_id INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (group_id) REFERENCES groups(id),
    FOREIGN KEY (study_activity_id) REFERENCES study_activities(id)
);

CREATE INDEX IF NOT EXISTS idx_study_sessions_created ON study_sessions(created_at DESC);

CREATE TABLE IF NOT EXISTS word_review_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    word_id INTEGER NOT NULL,
    is_correct BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (session_id) REFERENCES study_sessions(id) ON DELETE CASCADE,
    FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_review_items_session ON word_review_items(session_id);

CREATE TABLE IF NOT EXISTS jlpt_levels (
    word_id INTEGER PRIMARY KEY,
    level TEXT NOT NULL,
    FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS word_progress (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word_id INTEGER NOT NULL UNIQUE,
    status TEXT NOT NULL CHECK(status IN ('new', 'learning', 'learned')),
    last_studied_at DATETIME,
    FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS vector_collections (
    name TEXT PRIMARY KEY,
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS vector_records (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    document TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    embedding BLOB NOT NULL,
    model TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, id),
    FOREIGN KEY (collection) REFERENCES vector_collections(name) ON DELETE CASCADE
);

CREATE TRIGGER IF NOT EXISTS update_group_words_count_insert
AFTER INSERT ON word_groups
BEGIN
    UPDATE groups
    SET words_count = (SELECT COUNT(*) FROM word_groups WHERE group_id = NEW.group_id)
    WHERE id = NEW.group_id;
END;

CREATE TRIGGER IF NOT EXISTS update_group_words_count_delete
AFTER DELETE ON word_groups
BEGIN
    UPDATE groups
    SET words_count = (SELECT COUNT(*) FROM word_groups WHERE group_id = OLD.group_id)
    WHERE id = OLD.group_id;
END;

-- Cascaded membership deletes have already run when this fires, so every group is recomputed.
CREATE TRIGGER IF NOT EXISTS update_groups_words_count_on_word_delete
AFTER DELETE ON words
BEGIN
    UPDATE groups
    SET words_count = (SELECT COUNT(*) FROM word_groups WHERE group_id = groups.id);
END;
`
