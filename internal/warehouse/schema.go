// Package warehouse implements a durable Postgres store for processed movie
// snapshots and run history, and serves the analytical queries over SQL.
package warehouse

const schemaDDL = `
CREATE TABLE IF NOT EXISTS movies (
    snapshot_date        TEXT NOT NULL,
    movie_id             BIGINT NOT NULL,
    title                TEXT NOT NULL,
    original_language    TEXT NOT NULL,
    overview             TEXT,
    tagline              TEXT,
    status               TEXT,
    homepage             TEXT,
    poster_url           TEXT,
    imdb_id              TEXT,
    release_date         TEXT,
    genres               TEXT[] NOT NULL DEFAULT '{}',
    keywords             TEXT[] NOT NULL DEFAULT '{}',
    production_companies TEXT[] NOT NULL DEFAULT '{}',
    spoken_languages     TEXT[] NOT NULL DEFAULT '{}',
    budget               BIGINT NOT NULL,
    revenue              BIGINT NOT NULL,
    runtime              BIGINT NOT NULL,
    popularity           DOUBLE PRECISION NOT NULL,
    vote_average         DOUBLE PRECISION NOT NULL,
    vote_count           BIGINT NOT NULL,
    adult                BOOLEAN NOT NULL DEFAULT FALSE,
    profit               BIGINT NOT NULL,
    roi                  DOUBLE PRECISION,
    popularity_category  TEXT NOT NULL,
    release_year         INTEGER,
    loaded_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (snapshot_date, movie_id)
);
CREATE INDEX IF NOT EXISTS idx_movies_release_year ON movies (release_year);
CREATE INDEX IF NOT EXISTS idx_movies_profit ON movies (profit);

CREATE TABLE IF NOT EXISTS runs (
    run_id        TEXT PRIMARY KEY,
    snapshot_date TEXT NOT NULL,
    status        TEXT NOT NULL,
    extracted     INTEGER NOT NULL,
    enriched      INTEGER NOT NULL,
    processed     INTEGER NOT NULL,
    rejected      INTEGER NOT NULL,
    partition_key TEXT,
    error         TEXT,
    started_at    TIMESTAMPTZ NOT NULL,
    completed_at  TIMESTAMPTZ,
    archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_runs_snapshot_date ON runs (snapshot_date);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at);
`
