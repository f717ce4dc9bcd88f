package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the scan result tables. Timestamps and durations are stored
// as integer nanoseconds so both drivers compare them the same way.
const Schema = `
CREATE TABLE IF NOT EXISTS scans (
    id TEXT PRIMARY KEY,
    target TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    duration INTEGER NOT NULL,
    catalog_version TEXT NOT NULL DEFAULT '',

    -- Summary
    elements INTEGER NOT NULL,
    rules INTEGER NOT NULL,
    evaluations INTEGER NOT NULL,
    failures INTEGER NOT NULL,
    counts TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
    scan_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    rule_id TEXT NOT NULL,
    element_id TEXT NOT NULL,
    control_type TEXT NOT NULL,
    element_name TEXT,
    code TEXT NOT NULL,
    description TEXT,
    how_to_fix TEXT,
    standard TEXT,
    error TEXT,
    PRIMARY KEY (scan_id, seq)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at);
CREATE INDEX IF NOT EXISTS idx_scans_target ON scans(target);
CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);
CREATE INDEX IF NOT EXISTS idx_findings_rule_id ON findings(rule_id, scan_id);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const scanColumns = `id, target, status, started_at, finished_at, duration, catalog_version,
	elements, rules, evaluations, failures, counts`

const insertScan = `INSERT OR REPLACE INTO scans (` + scanColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertFinding = `INSERT INTO findings (
	scan_id, seq, rule_id, element_id, control_type, element_name,
	code, description, how_to_fix, standard, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectFindings = `SELECT rule_id, element_id, control_type, element_name,
	code, description, how_to_fix, standard, error
	FROM findings WHERE scan_id = ? ORDER BY seq`
