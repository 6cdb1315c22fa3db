package localstore

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	birthday   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS case_types (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS locations (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	country TEXT NOT NULL,
	region  TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_locations_country ON locations(country);

CREATE TABLE IF NOT EXISTS cases (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL REFERENCES users(id),
	case_type_id INTEGER NOT NULL REFERENCES case_types(id),
	case_name    TEXT NOT NULL,
	description  TEXT NOT NULL,
	time_hour    TEXT NOT NULL,
	location_id  INTEGER NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_cases_time_hour ON cases(time_hour);

CREATE TABLE IF NOT EXISTS files (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	url     TEXT NOT NULL,
	type    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_case ON files(case_id);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id    INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
	text       TEXT NOT NULL,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	likes      INTEGER NOT NULL DEFAULT 0,
	dislikes   INTEGER,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_case ON comments(case_id);
`

// defaultCaseTypes 新库的初始案例类型
var defaultCaseTypes = []string{"Criptozoología", "Parapsicología", "Ufología"}
