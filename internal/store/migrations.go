package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fetches (
	id           TEXT PRIMARY KEY,
	raw_item_id  TEXT NOT NULL DEFAULT '',
	message_id   TEXT NOT NULL DEFAULT '',
	base_url     TEXT NOT NULL DEFAULT '',
	outcome      TEXT NOT NULL CHECK(outcome IN ('succeeded', 'failed')),
	error_kind   TEXT NOT NULL DEFAULT '',
	status_code  INTEGER NOT NULL DEFAULT 0,
	header_bytes INTEGER NOT NULL DEFAULT 0,
	fetched_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetches_fetched_at ON fetches(fetched_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_fetches_outcome
	ON fetches(outcome, fetched_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
