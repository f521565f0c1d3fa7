package tablelayer

import (
	"context"
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/enginerr"
)

// v1 stores crate/track metadata in "music" and performance BLOBs in
// "perfdata", two attachments sharing one adapter connection.

const musicDDL = `
CREATE TABLE Information (
	id INTEGER PRIMARY KEY,
	uuid TEXT NOT NULL,
	schemaVersionMajor INTEGER NOT NULL,
	schemaVersionMinor INTEGER NOT NULL,
	schemaVersionPatch INTEGER NOT NULL,
	currentPlayedIndicator INTEGER NOT NULL DEFAULT 0,
	lastRekordBoxLibraryImportReadCounter INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE Track (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	relativePath TEXT,
	filename TEXT,
	sampleRate REAL,
	sampleCount INTEGER,
	length INTEGER,
	fileBytes INTEGER,
	isExternalTrack INTEGER NOT NULL DEFAULT 0,
	idAlbumArt INTEGER,
	pdbImportKey INTEGER NOT NULL DEFAULT 0,
	hasRekordboxValues INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE MetaData (
	id INTEGER NOT NULL,
	type INTEGER NOT NULL,
	text TEXT,
	PRIMARY KEY (id, type)
);

CREATE TABLE MetaDataInteger (
	id INTEGER NOT NULL,
	type INTEGER NOT NULL,
	value INTEGER,
	PRIMARY KEY (id, type)
);

CREATE TABLE Crate (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	path TEXT NOT NULL
);

CREATE TABLE CrateParentList (
	crateOriginId INTEGER NOT NULL,
	crateId INTEGER NOT NULL,
	PRIMARY KEY (crateId)
);

CREATE TABLE CrateHierarchy (
	crateOriginId INTEGER NOT NULL,
	crateId INTEGER NOT NULL,
	crateParentId INTEGER NOT NULL,
	PRIMARY KEY (crateId, crateParentId)
);

CREATE TABLE CrateTrackList (
	crateId INTEGER NOT NULL,
	trackId INTEGER NOT NULL,
	PRIMARY KEY (crateId, trackId)
);
`

// perfdata is always an ATTACHed database (never the connection's main
// schema), so every table it defines must be schema-qualified: an
// unqualified CREATE TABLE always lands in main, and Information would
// otherwise collide with music's own table of the same name.
const perfDDL = `
CREATE TABLE perfdata.Information (
	id INTEGER PRIMARY KEY,
	uuid TEXT NOT NULL,
	schemaVersionMajor INTEGER NOT NULL,
	schemaVersionMinor INTEGER NOT NULL,
	schemaVersionPatch INTEGER NOT NULL,
	currentPlayedIndicator INTEGER NOT NULL DEFAULT 0,
	lastRekordBoxLibraryImportReadCounter INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE perfdata.PerformanceData (
	id INTEGER PRIMARY KEY,
	trackData BLOB,
	overviewWaveFormData BLOB,
	beatData BLOB,
	quickCues BLOB,
	loops BLOB,
	highResolutionWaveFormData BLOB
);
`

var musicTables = []string{
	"Information", "Track", "MetaData", "MetaDataInteger",
	"Crate", "CrateParentList", "CrateHierarchy", "CrateTrackList",
}

var perfTables = []string{"Information", "PerformanceData"}

var informationColumns = []columnSpec{
	{"id", "INTEGER"}, {"uuid", "TEXT"},
	{"schemaVersionMajor", "INTEGER"}, {"schemaVersionMinor", "INTEGER"}, {"schemaVersionPatch", "INTEGER"},
	{"currentPlayedIndicator", "INTEGER"}, {"lastRekordBoxLibraryImportReadCounter", "INTEGER"},
}

var musicColumns = map[string][]columnSpec{
	"Information": informationColumns,
	"Track": {
		{"id", "INTEGER"}, {"relativePath", "TEXT"}, {"filename", "TEXT"},
		{"sampleRate", "REAL"}, {"sampleCount", "INTEGER"}, {"length", "INTEGER"},
		{"fileBytes", "INTEGER"}, {"isExternalTrack", "INTEGER"}, {"idAlbumArt", "INTEGER"},
		{"pdbImportKey", "INTEGER"}, {"hasRekordboxValues", "INTEGER"},
	},
	"MetaData":        {{"id", "INTEGER"}, {"type", "INTEGER"}, {"text", "TEXT"}},
	"MetaDataInteger": {{"id", "INTEGER"}, {"type", "INTEGER"}, {"value", "INTEGER"}},
	"Crate":           {{"id", "INTEGER"}, {"title", "TEXT"}, {"path", "TEXT"}},
	"CrateParentList": {{"crateOriginId", "INTEGER"}, {"crateId", "INTEGER"}},
	"CrateHierarchy": {
		{"crateOriginId", "INTEGER"}, {"crateId", "INTEGER"}, {"crateParentId", "INTEGER"},
	},
	"CrateTrackList": {{"crateId", "INTEGER"}, {"trackId", "INTEGER"}},
}

var perfColumns = map[string][]columnSpec{
	"Information": informationColumns,
	"PerformanceData": {
		{"id", "INTEGER"}, {"trackData", "BLOB"}, {"overviewWaveFormData", "BLOB"},
		{"beatData", "BLOB"}, {"quickCues", "BLOB"}, {"loops", "BLOB"},
		{"highResolutionWaveFormData", "BLOB"},
	},
}

func (l *Layer) createV1(ctx context.Context) error {
	if _, err := l.Adapter.Exec(ctx, musicAttachment, musicDDL); err != nil {
		return wrapBackend("create", err)
	}
	if _, err := l.Adapter.Exec(ctx, perfAttachment, perfDDL); err != nil {
		return wrapBackend("create", err)
	}

	uid := newUUID()
	if _, err := l.Adapter.Exec(ctx, musicAttachment,
		`INSERT INTO Information (id, uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch) VALUES (1, ?, ?, ?, ?)`,
		uid, int64(l.Schema.Major), int64(l.Schema.Minor), int64(l.Schema.Patch)); err != nil {
		return wrapBackend("create", err)
	}
	if _, err := l.Adapter.Exec(ctx, perfAttachment,
		`INSERT INTO perfdata.Information (id, uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch) VALUES (1, ?, ?, ?, ?)`,
		uid, int64(l.Schema.Major), int64(l.Schema.Minor), int64(l.Schema.Patch)); err != nil {
		return wrapBackend("create", err)
	}
	return nil
}

func (l *Layer) verifyV1(ctx context.Context) error {
	if err := verifyTables(ctx, l.Adapter, musicAttachment, musicTables); err != nil {
		return err
	}
	if err := verifyTables(ctx, l.Adapter, perfAttachment, perfTables); err != nil {
		return err
	}
	for _, table := range musicTables {
		if err := verifyColumns(ctx, l.Adapter, musicAttachment, table, musicColumns[table]); err != nil {
			return err
		}
	}
	for _, table := range perfTables {
		if err := verifyColumns(ctx, l.Adapter, perfAttachment, table, perfColumns[table]); err != nil {
			return err
		}
	}
	// v1 defines no triggers.
	if err := verifyInformationRowCount(ctx, l.Adapter, musicAttachment); err != nil {
		return err
	}
	return verifyInformationRowCount(ctx, l.Adapter, perfAttachment)
}

// databaseUUID reads the UUID stamped at create time from the music
// attachment's Information row (v1) or main's (v2/v3).
func (l *Layer) databaseUUID(ctx context.Context, attachment string) (string, error) {
	table := "Information"
	if attachment != mainAttachment {
		table = attachment + ".Information"
	}

	var uid string
	found := false
	err := l.Adapter.Query(ctx, attachment, `SELECT uuid FROM `+table, func(row adapter.Row) error {
		if found {
			return nil
		}
		uid, _ = row[0].(string)
		found = true
		return nil
	})
	if err != nil {
		return "", wrapBackend("database_uuid", err)
	}
	if !found {
		return "", enginerr.New("database_uuid", enginerr.KindDatabaseInconsistency,
			fmt.Errorf("no Information row in %s", attachment))
	}
	return uid, nil
}
