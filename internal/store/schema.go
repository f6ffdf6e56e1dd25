package store

const Schema = `
CREATE TABLE IF NOT EXISTS audio_files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	original_path TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	format TEXT NOT NULL,
	duration REAL,
	sample_rate INTEGER,
	channels INTEGER,
	title TEXT,
	artist TEXT,
	uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS separation_jobs (
	id TEXT PRIMARY KEY,
	audio_file_id TEXT NOT NULL,
	algorithm TEXT NOT NULL,
	quality TEXT NOT NULL,
	status TEXT NOT NULL,
	progress REAL DEFAULT 0,
	error_message TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	started_at DATETIME,
	completed_at DATETIME,

	FOREIGN KEY (audio_file_id) REFERENCES audio_files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_separation_jobs_audio_file_id ON separation_jobs(audio_file_id);
CREATE INDEX IF NOT EXISTS idx_separation_jobs_status ON separation_jobs(status);

CREATE TABLE IF NOT EXISTS stem_tracks (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	instrument_name TEXT NOT NULL,
	file_path TEXT NOT NULL,
	duration REAL DEFAULT 0,
	file_size INTEGER DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	FOREIGN KEY (job_id) REFERENCES separation_jobs(id) ON DELETE CASCADE,
	UNIQUE (job_id, instrument_name)
);

CREATE INDEX IF NOT EXISTS idx_stem_tracks_job_id ON stem_tracks(job_id);

CREATE TABLE IF NOT EXISTS tablatures (
	id TEXT PRIMARY KEY,
	track_id TEXT NOT NULL,
	instrument_type TEXT NOT NULL,
	tuning TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	FOREIGN KEY (track_id) REFERENCES stem_tracks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tablatures_track_id ON tablatures(track_id);
`
