package database

const schema = `
CREATE TABLE shows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('movie', 'series', 'anime')),
	poster TEXT,
	synopsis TEXT,
	rating REAL,
	trailer TEXT,
	year INTEGER,
	category TEXT,
	genres TEXT,
	quality TEXT,
	episode_count TEXT,
	duration TEXT,
	language TEXT,
	country TEXT,
	directors TEXT,
	cast_list TEXT,
	source_url TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX idx_shows_kind ON shows(kind);
CREATE INDEX idx_shows_source_url ON shows(source_url);

CREATE TABLE seasons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	show_id INTEGER NOT NULL,
	season_number INTEGER NOT NULL,
	poster TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE CASCADE,
	UNIQUE(show_id, season_number)
);

CREATE INDEX idx_seasons_show ON seasons(show_id);

-- episode_number is REAL so half-episodes ("25.5") never collide with
-- their integer neighbors; number_label is the normalized natural key
-- ("5", "25.5", "special", "12+13").
CREATE TABLE episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	season_id INTEGER NOT NULL,
	episode_number REAL NOT NULL,
	number_label TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (season_id) REFERENCES seasons(id) ON DELETE CASCADE,
	UNIQUE(season_id, number_label)
);

CREATE INDEX idx_episodes_season ON episodes(season_id);

CREATE TABLE servers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	episode_id INTEGER NOT NULL,
	server_number INTEGER NOT NULL,
	embed_url TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (episode_id) REFERENCES episodes(id) ON DELETE CASCADE
);

CREATE INDEX idx_servers_episode ON servers(episode_id);

CREATE TABLE scrape_progress (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	status TEXT DEFAULT 'pending' CHECK(status IN ('pending', 'completed', 'failed')),
	show_id INTEGER,
	error_message TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE SET NULL
);

CREATE INDEX idx_progress_status ON scrape_progress(status);
`

// migrations contains incremental schema changes applied in order from the
// current user_version. Index 0 is empty because version 0 uses the base
// schema.
var migrations = []string{
	"",
}
