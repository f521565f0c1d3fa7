package tablelayer

import (
	"context"
	"time"

	"github.com/kitsune-dj/enginelib/internal/adapter"
	"github.com/kitsune-dj/enginelib/internal/schema"
)

func (l *Layer) createTrackV2V3(ctx context.Context, databaseUUID string, snap TrackSnapshot) (int64, error) {
	now := time.Now().UTC()
	res, err := l.Adapter.Exec(ctx, mainAttachment,
		`INSERT INTO Track (
			title, artist, album, genre, comment, composer, key, rating, bitrate, bpm, year,
			sampleRate, sampleCount, path, filename, fileBytes, length, timeLastPlayed,
			dateCreated, dateAdded, isAnalyzed, origDatabaseUuid
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		optString(snap.Title), optString(snap.Artist), optString(snap.Album), optString(snap.Genre),
		optString(snap.Comment), optString(snap.Composer), optMusicalKey(snap.Key), optInt(snap.Rating),
		optInt(snap.Bitrate), optInt(snap.BPM), optInt(snap.Year),
		optFloat(snap.SampleRate), optUint64(snap.SampleCount), optString(snap.RelativePath), snap.Filename(),
		optUint64(snap.FileBytes), optDurationMs(snap.Duration), optTimeUnix(snap.LastPlayedAt),
		now.Unix(), now.Unix(), boolToInt(true), databaseUUID)
	if err != nil {
		return 0, wrapBackend("create_track", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapBackend("create_track", err)
	}
	if _, err := l.Adapter.Exec(ctx, mainAttachment, `UPDATE Track SET origTrackId = ? WHERE id = ?`, id, id); err != nil {
		return 0, wrapBackend("create_track", err)
	}

	if err := l.writePerformanceDataV2V3(ctx, id, snap); err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Layer) updateTrackV2V3(ctx context.Context, id int64, snap TrackSnapshot) error {
	_, err := l.Adapter.Exec(ctx, mainAttachment,
		`UPDATE Track SET
			title = ?, artist = ?, album = ?, genre = ?, comment = ?, composer = ?, key = ?, rating = ?,
			bitrate = ?, bpm = ?, year = ?, sampleRate = ?, sampleCount = ?, path = ?, filename = ?,
			fileBytes = ?, length = ?, timeLastPlayed = ?
		 WHERE id = ?`,
		optString(snap.Title), optString(snap.Artist), optString(snap.Album), optString(snap.Genre),
		optString(snap.Comment), optString(snap.Composer), optMusicalKey(snap.Key), optInt(snap.Rating),
		optInt(snap.Bitrate), optInt(snap.BPM), optInt(snap.Year),
		optFloat(snap.SampleRate), optUint64(snap.SampleCount), optString(snap.RelativePath), snap.Filename(),
		optUint64(snap.FileBytes), optDurationMs(snap.Duration), optTimeUnix(snap.LastPlayedAt), id)
	if err != nil {
		return wrapBackend("update_track", err)
	}
	return l.writePerformanceDataV2V3(ctx, id, snap)
}

func (l *Layer) writePerformanceDataV2V3(ctx context.Context, id int64, snap TrackSnapshot) error {
	set := encodeBlobs(snap)
	if l.Schema.Generation == schema.GenV3 {
		_, err := l.Adapter.Exec(ctx, mainAttachment,
			`UPDATE PerformanceData SET trackData = ?, overviewWaveFormData = ?, beatData = ?, quickCues = ?, loops = ? WHERE id = ?`,
			set.trackData, set.overview, set.beatData, set.quickCues, set.loops, id)
		return wrapBackend("write_performance_data", err)
	}
	_, err := l.Adapter.Exec(ctx, mainAttachment,
		`UPDATE Track SET trackData = ?, overviewWaveFormData = ?, beatData = ?, quickCues = ?, loops = ? WHERE id = ?`,
		set.trackData, set.overview, set.beatData, set.quickCues, set.loops, id)
	return wrapBackend("write_performance_data", err)
}

func (l *Layer) trackByIDV2V3(ctx context.Context, id int64) (TrackSnapshot, bool, error) {
	rows, err := l.listTracksV2V3WithFilter(ctx, `WHERE t.id = ?`, id)
	if err != nil {
		return TrackSnapshot{}, false, err
	}
	if len(rows) == 0 {
		return TrackSnapshot{}, false, nil
	}
	return rows[0].Snapshot, true, nil
}

func (l *Layer) listTracksV2V3(ctx context.Context, relativePathFilter string) ([]TrackRow, error) {
	if relativePathFilter == "" {
		return l.listTracksV2V3WithFilter(ctx, "")
	}
	return l.listTracksV2V3WithFilter(ctx, `WHERE t.path = ?`, relativePathFilter)
}

func (l *Layer) listTracksV2V3WithFilter(ctx context.Context, filter string, args ...adapter.Value) ([]TrackRow, error) {
	var out []TrackRow
	err := l.Adapter.Query(ctx, mainAttachment,
		`SELECT t.id, t.title, t.artist, t.album, t.genre, t.comment, t.composer, t.key, t.rating,
			t.bitrate, t.bpm, t.year, t.sampleRate, t.sampleCount, t.path, t.fileBytes, t.length,
			t.timeLastPlayed, t.trackData, t.overviewWaveFormData, t.beatData, t.quickCues, t.loops
		 FROM Track t `+filter+` ORDER BY t.id`,
		func(row adapter.Row) error {
			id := toInt64(row[0])
			snap := TrackSnapshot{
				Title:        toOptString(row[1]),
				Artist:       toOptString(row[2]),
				Album:        toOptString(row[3]),
				Genre:        toOptString(row[4]),
				Comment:      toOptString(row[5]),
				Composer:     toOptString(row[6]),
				Key:          toOptMusicalKey(row[7]),
				Rating:       toOptInt(row[8]),
				Bitrate:      toOptInt(row[9]),
				BPM:          toOptInt(row[10]),
				Year:         toOptInt(row[11]),
				SampleRate:   toOptFloat(row[12]),
				SampleCount:  toOptUint64(row[13]),
				RelativePath: toOptString(row[14]),
				FileBytes:    toOptUint64(row[15]),
				Duration:     toOptDurationMs(row[16]),
				LastPlayedAt: toOptTimeUnix(row[17]),
			}
			raw := rawBlobs{}
			raw.trackData, _ = row[18].([]byte)
			raw.overview, _ = row[19].([]byte)
			raw.beatData, _ = row[20].([]byte)
			raw.quickCues, _ = row[21].([]byte)
			raw.loops, _ = row[22].([]byte)
			decodeBlobsInto(&snap, raw)
			out = append(out, TrackRow{ID: id, Snapshot: snap})
			return nil
		}, args...)
	if err != nil {
		return nil, wrapBackend("list_tracks", err)
	}

	if l.Schema.Generation == schema.GenV3 {
		for i := range out {
			if err := l.fillPerformanceDataV3(ctx, out[i].ID, &out[i].Snapshot); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (l *Layer) fillPerformanceDataV3(ctx context.Context, id int64, snap *TrackSnapshot) error {
	var raw rawBlobs
	found := false
	err := l.Adapter.Query(ctx, mainAttachment,
		`SELECT trackData, overviewWaveFormData, beatData, quickCues, loops FROM PerformanceData WHERE id = ?`,
		func(row adapter.Row) error {
			raw.trackData, _ = row[0].([]byte)
			raw.overview, _ = row[1].([]byte)
			raw.beatData, _ = row[2].([]byte)
			raw.quickCues, _ = row[3].([]byte)
			raw.loops, _ = row[4].([]byte)
			found = true
			return nil
		}, id)
	if err != nil {
		return wrapBackend("track_by_id", err)
	}
	if !found {
		return nil
	}
	decodeBlobsInto(snap, raw)
	return nil
}
