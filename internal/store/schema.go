package store

const Schema = `
CREATE TABLE IF NOT EXISTS sellers (
	username TEXT PRIMARY KEY,
	last_updated DATETIME NOT NULL,
	total_releases INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'complete'
);

CREATE TABLE IF NOT EXISTS releases (
	id INTEGER NOT NULL,
	seller_username TEXT NOT NULL,
	artist_title TEXT,
	artist TEXT,
	title TEXT,
	label TEXT,
	year INTEGER,
	genres TEXT,  -- JSON array
	styles TEXT,  -- JSON array
	avg_rating REAL DEFAULT 0,
	num_ratings INTEGER DEFAULT 0,
	bayesian_score REAL DEFAULT 0,
	price REAL DEFAULT 0,
	have_count INTEGER DEFAULT 0,
	want_count INTEGER DEFAULT 0,
	youtube_video_id TEXT,
	video_urls TEXT,  -- JSON array
	url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	PRIMARY KEY (seller_username, id),
	FOREIGN KEY (seller_username) REFERENCES sellers(username)
);

CREATE TABLE IF NOT EXISTS jobs (
	job_id TEXT PRIMARY KEY,
	seller_username TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	progress INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 0,
	current_step TEXT NOT NULL DEFAULT '',
	error_message TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_releases_seller ON releases(seller_username);
CREATE INDEX IF NOT EXISTS idx_releases_score ON releases(bayesian_score DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_seller ON jobs(seller_username);
`
