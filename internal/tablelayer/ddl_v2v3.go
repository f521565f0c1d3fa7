package tablelayer

import (
	"context"

	"github.com/kitsune-dj/enginelib/internal/schema"
)

// v2/v3 unify crate/track/performance storage into a single "main"
// attachment. v2 keeps BLOBs as columns on Track; v3 splits them back
// out into PerformanceData, auto-inserted by an AFTER INSERT trigger on
// Track so every track row always has a matching performance row.

const trackV2V3DDL = `
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
	playOrder INTEGER,
	length INTEGER,
	bpm INTEGER,
	year INTEGER,
	path TEXT,
	filename TEXT,
	bitrate INTEGER,
	bpmAnalyzed REAL,
	albumArt TEXT,
	fileBytes INTEGER,
	title TEXT,
	artist TEXT,
	album TEXT,
	genre TEXT,
	comment TEXT,
	label TEXT,
	composer TEXT,
	remixer TEXT,
	key INTEGER,
	rating INTEGER,
	albumArtId INTEGER,
	timeLastPlayed INTEGER,
	isPlayed INTEGER NOT NULL DEFAULT 0,
	fileType TEXT,
	isAnalyzed INTEGER NOT NULL DEFAULT 0,
	dateCreated INTEGER,
	dateAdded INTEGER,
	isAvailable INTEGER NOT NULL DEFAULT 1,
	isMetadataOfPackedTrackChanged INTEGER NOT NULL DEFAULT 0,
	isPerfomanceDataOfPackedTrackChanged INTEGER NOT NULL DEFAULT 0,
	playedIndicator INTEGER,
	isMetadataImported INTEGER NOT NULL DEFAULT 0,
	sampleRate REAL,
	sampleCount INTEGER,
	publisher TEXT,
	isrc TEXT,
	kuvoPublic INTEGER NOT NULL DEFAULT 0,
	origDatabaseUuid TEXT,
	origTrackId INTEGER,
	streamingSource TEXT,
	uri TEXT,
	streamingFlags INTEGER NOT NULL DEFAULT 0,
	explicitLyrics INTEGER NOT NULL DEFAULT 0,
	trackData BLOB,
	overviewWaveFormData BLOB,
	beatData BLOB,
	quickCues BLOB,
	loops BLOB
);

CREATE TABLE Playlist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	parentListId INTEGER NOT NULL DEFAULT 0,
	isPersisted INTEGER NOT NULL DEFAULT 1,
	nextListId INTEGER NOT NULL DEFAULT 0,
	lastEditTime TEXT,
	isExplicitlyExported INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE PlaylistEntity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	listId INTEGER NOT NULL,
	trackId INTEGER NOT NULL,
	databaseUuid TEXT NOT NULL,
	nextEntityId INTEGER NOT NULL DEFAULT 0,
	membershipReference INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE ChangeLog (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trackId INTEGER,
	changeType TEXT,
	loggedAt INTEGER
);
`

const perfDataV3DDL = `
CREATE TABLE PerformanceData (
	id INTEGER PRIMARY KEY,
	trackData BLOB,
	overviewWaveFormData BLOB,
	beatData BLOB,
	quickCues BLOB,
	loops BLOB
);

CREATE TRIGGER trg_track_insert_performance_data
AFTER INSERT ON Track
BEGIN
	INSERT INTO PerformanceData (id) VALUES (new.id);
END;
`

// trg_playlist_insert_next_list_id only fires for a plain tail-append
// insert (nextListId left at its default, 0): it finds the sibling group's
// current tail and relinks it to the new row. An insert-after splice sets
// nextListId explicitly to the predecessor's old next pointer instead, so
// the trigger's WHEN guard skips it and createPlaylistAfter relinks the
// predecessor itself. Guarding on nextListId rather than parentListId
// means root-level playlists (parentListId = 0) get chained exactly like
// any other sibling group.
const nextListIdDDL = `
CREATE TRIGGER trg_playlist_insert_next_list_id
AFTER INSERT ON Playlist
WHEN new.nextListId = 0
BEGIN
	UPDATE Playlist SET nextListId = new.id
	WHERE id = (
		SELECT id FROM Playlist
		WHERE parentListId = new.parentListId AND nextListId = 0 AND id != new.id
	);
END;

CREATE TRIGGER trg_playlistentity_insert_next_entity_id
AFTER INSERT ON PlaylistEntity
BEGIN
	UPDATE PlaylistEntity SET nextEntityId = new.id
	WHERE id = (
		SELECT id FROM PlaylistEntity
		WHERE listId = new.listId AND nextEntityId = 0 AND id != new.id
	);
END;
`

var mainTablesV2 = []string{"Information", "Track", "Playlist", "PlaylistEntity", "ChangeLog"}
var mainTablesV3 = append(append([]string{}, mainTablesV2...), "PerformanceData")

var mainColumnsV2V3 = map[string][]columnSpec{
	"Information": informationColumns,
	"Track": {
		{"id", "INTEGER"}, {"playOrder", "INTEGER"}, {"length", "INTEGER"}, {"bpm", "INTEGER"},
		{"year", "INTEGER"}, {"path", "TEXT"}, {"filename", "TEXT"}, {"bitrate", "INTEGER"},
		{"bpmAnalyzed", "REAL"}, {"albumArt", "TEXT"}, {"fileBytes", "INTEGER"}, {"title", "TEXT"},
		{"artist", "TEXT"}, {"album", "TEXT"}, {"genre", "TEXT"}, {"comment", "TEXT"}, {"label", "TEXT"},
		{"composer", "TEXT"}, {"remixer", "TEXT"}, {"key", "INTEGER"}, {"rating", "INTEGER"},
		{"albumArtId", "INTEGER"}, {"timeLastPlayed", "INTEGER"}, {"isPlayed", "INTEGER"},
		{"fileType", "TEXT"}, {"isAnalyzed", "INTEGER"}, {"dateCreated", "INTEGER"},
		{"dateAdded", "INTEGER"}, {"isAvailable", "INTEGER"},
		{"isMetadataOfPackedTrackChanged", "INTEGER"}, {"isPerfomanceDataOfPackedTrackChanged", "INTEGER"},
		{"playedIndicator", "INTEGER"}, {"isMetadataImported", "INTEGER"}, {"sampleRate", "REAL"},
		{"sampleCount", "INTEGER"}, {"publisher", "TEXT"}, {"isrc", "TEXT"}, {"kuvoPublic", "INTEGER"},
		{"origDatabaseUuid", "TEXT"}, {"origTrackId", "INTEGER"}, {"streamingSource", "TEXT"},
		{"uri", "TEXT"}, {"streamingFlags", "INTEGER"}, {"explicitLyrics", "INTEGER"},
		{"trackData", "BLOB"}, {"overviewWaveFormData", "BLOB"}, {"beatData", "BLOB"},
		{"quickCues", "BLOB"}, {"loops", "BLOB"},
	},
	"Playlist": {
		{"id", "INTEGER"}, {"title", "TEXT"}, {"parentListId", "INTEGER"}, {"isPersisted", "INTEGER"},
		{"nextListId", "INTEGER"}, {"lastEditTime", "TEXT"}, {"isExplicitlyExported", "INTEGER"},
	},
	"PlaylistEntity": {
		{"id", "INTEGER"}, {"listId", "INTEGER"}, {"trackId", "INTEGER"}, {"databaseUuid", "TEXT"},
		{"nextEntityId", "INTEGER"}, {"membershipReference", "INTEGER"},
	},
	"ChangeLog": {
		{"id", "INTEGER"}, {"trackId", "INTEGER"}, {"changeType", "TEXT"}, {"loggedAt", "INTEGER"},
	},
	"PerformanceData": {
		{"id", "INTEGER"}, {"trackData", "BLOB"}, {"overviewWaveFormData", "BLOB"},
		{"beatData", "BLOB"}, {"quickCues", "BLOB"}, {"loops", "BLOB"},
	},
}

var mainTriggersV2 = []string{"trg_playlist_insert_next_list_id", "trg_playlistentity_insert_next_entity_id"}
var mainTriggersV3 = append(append([]string{}, mainTriggersV2...), "trg_track_insert_performance_data")

func (l *Layer) createV2V3(ctx context.Context) error {
	if _, err := l.Adapter.Exec(ctx, mainAttachment, trackV2V3DDL); err != nil {
		return wrapBackend("create", err)
	}
	if _, err := l.Adapter.Exec(ctx, mainAttachment, nextListIdDDL); err != nil {
		return wrapBackend("create", err)
	}
	if l.Schema.Generation == schema.GenV3 {
		if _, err := l.Adapter.Exec(ctx, mainAttachment, perfDataV3DDL); err != nil {
			return wrapBackend("create", err)
		}
	}

	uid := newUUID()
	if _, err := l.Adapter.Exec(ctx, mainAttachment,
		`INSERT INTO Information (id, uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch) VALUES (1, ?, ?, ?, ?)`,
		uid, int64(l.Schema.Major), int64(l.Schema.Minor), int64(l.Schema.Patch)); err != nil {
		return wrapBackend("create", err)
	}
	return nil
}

func (l *Layer) verifyV2V3(ctx context.Context) error {
	tables := mainTablesV2
	triggers := mainTriggersV2
	if l.Schema.Generation == schema.GenV3 {
		tables = mainTablesV3
		triggers = mainTriggersV3
	}
	if err := verifyTables(ctx, l.Adapter, mainAttachment, tables); err != nil {
		return err
	}
	for _, table := range tables {
		if err := verifyColumns(ctx, l.Adapter, mainAttachment, table, mainColumnsV2V3[table]); err != nil {
			return err
		}
	}
	if err := verifyTriggers(ctx, l.Adapter, mainAttachment, triggers); err != nil {
		return err
	}
	return verifyInformationRowCount(ctx, l.Adapter, mainAttachment)
}
