package tablelayer

import (
	"context"
	"fmt"
	"time"

	"github.com/kitsune-dj/enginelib/internal/adapter"
)

func (l *Layer) createTrackV1(ctx context.Context, snap TrackSnapshot) (int64, error) {
	res, err := l.Adapter.Exec(ctx, musicAttachment,
		`INSERT INTO Track (relativePath, filename, sampleRate, sampleCount, length, fileBytes, pdbImportKey, hasRekordboxValues)
		 VALUES (?, ?, ?, ?, ?, ?, 1, 1)`,
		optString(snap.RelativePath), snap.Filename(),
		optFloat(snap.SampleRate), optUint64(snap.SampleCount), optDurationMs(snap.Duration), optUint64(snap.FileBytes))
	if err != nil {
		return 0, wrapBackend("create_track", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapBackend("create_track", err)
	}

	if err := l.writeMetadataV1(ctx, id, snap); err != nil {
		return 0, err
	}
	if err := l.writePerformanceDataV1(ctx, id, snap); err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Layer) updateTrackV1(ctx context.Context, id int64, snap TrackSnapshot) error {
	_, err := l.Adapter.Exec(ctx, musicAttachment,
		`UPDATE Track SET relativePath = ?, filename = ?, sampleRate = ?, sampleCount = ?, length = ?, fileBytes = ? WHERE id = ?`,
		optString(snap.RelativePath), snap.Filename(),
		optFloat(snap.SampleRate), optUint64(snap.SampleCount), optDurationMs(snap.Duration), optUint64(snap.FileBytes), id)
	if err != nil {
		return wrapBackend("update_track", err)
	}
	if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM MetaData WHERE id = ?`, id); err != nil {
		return wrapBackend("update_track", err)
	}
	if _, err := l.Adapter.Exec(ctx, musicAttachment, `DELETE FROM MetaDataInteger WHERE id = ?`, id); err != nil {
		return wrapBackend("update_track", err)
	}
	if err := l.writeMetadataV1(ctx, id, snap); err != nil {
		return err
	}
	return l.writePerformanceDataV1(ctx, id, snap)
}

func (l *Layer) writeMetadataV1(ctx context.Context, id int64, snap TrackSnapshot) error {
	strings := []struct {
		kind int
		val  *string
	}{
		{metaAlbum, snap.Album}, {metaArtist, snap.Artist}, {metaComment, snap.Comment},
		{metaComposer, snap.Composer}, {metaGenre, snap.Genre}, {metaPublisher, snap.Publisher},
		{metaTitle, snap.Title},
	}
	for _, m := range strings {
		if m.val == nil {
			continue
		}
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`INSERT INTO MetaData (id, type, text) VALUES (?, ?, ?)`, id, m.kind, *m.val); err != nil {
			return wrapBackend("write_metadata", err)
		}
	}

	ints := []struct {
		kind int
		val  *int
	}{
		{metaIntBitrate, snap.Bitrate}, {metaIntBPM, snap.BPM}, {metaIntTrackNumber, snap.TrackNumber},
		{metaIntYear, snap.Year}, {metaIntRating, snap.Rating},
	}
	for _, m := range ints {
		if m.val == nil {
			continue
		}
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`INSERT INTO MetaDataInteger (id, type, value) VALUES (?, ?, ?)`, id, m.kind, int64(*m.val)); err != nil {
			return wrapBackend("write_metadata", err)
		}
	}

	if snap.Key != nil {
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`INSERT INTO MetaDataInteger (id, type, value) VALUES (?, ?, ?)`, id, metaIntKey, int64(*snap.Key)); err != nil {
			return wrapBackend("write_metadata", err)
		}
	}
	if snap.LastPlayedAt != nil {
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`INSERT INTO MetaDataInteger (id, type, value) VALUES (?, ?, ?)`, id, metaIntLastPlayedAt, snap.LastPlayedAt.Unix()); err != nil {
			return wrapBackend("write_metadata", err)
		}
	}

	if ext := fileExtension(snap.RelativePath); ext != "" {
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`INSERT INTO MetaData (id, type, text) VALUES (?, ?, ?)`, id, metaFileExtension, ext); err != nil {
			return wrapBackend("write_metadata", err)
		}
	}
	if snap.Duration != nil {
		if _, err := l.Adapter.Exec(ctx, musicAttachment,
			`INSERT INTO MetaData (id, type, text) VALUES (?, ?, ?)`, id, metaDurationDisplay, durationDisplay(*snap.Duration)); err != nil {
			return wrapBackend("write_metadata", err)
		}
	}
	return nil
}

// fileExtension returns the extension (without the dot, case unchanged)
// of path's basename, or "" if it has none.
func fileExtension(path *string) string {
	if path == nil {
		return ""
	}
	name := basename(*path)
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}

// durationDisplay formats d as "m:ss", e.g. 3:45 for three minutes
// forty-five seconds.
func durationDisplay(d time.Duration) string {
	total := int64(d / time.Second)
	minutes := total / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func (l *Layer) writePerformanceDataV1(ctx context.Context, id int64, snap TrackSnapshot) error {
	set := encodeBlobs(snap)
	_, err := l.Adapter.Exec(ctx, perfAttachment,
		`INSERT INTO PerformanceData (id, trackData, overviewWaveFormData, beatData, quickCues, loops, highResolutionWaveFormData)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			trackData=excluded.trackData, overviewWaveFormData=excluded.overviewWaveFormData,
			beatData=excluded.beatData, quickCues=excluded.quickCues, loops=excluded.loops,
			highResolutionWaveFormData=excluded.highResolutionWaveFormData`,
		id, set.trackData, set.overview, set.beatData, set.quickCues, set.loops, set.highRes)
	return wrapBackend("write_performance_data", err)
}

func (l *Layer) trackByIDV1(ctx context.Context, id int64) (TrackSnapshot, bool, error) {
	rows, err := l.listTracksV1WithFilter(ctx, `WHERE t.id = ?`, id)
	if err != nil {
		return TrackSnapshot{}, false, err
	}
	if len(rows) == 0 {
		return TrackSnapshot{}, false, nil
	}
	return rows[0].Snapshot, true, nil
}

func (l *Layer) listTracksV1(ctx context.Context, relativePathFilter string) ([]TrackRow, error) {
	if relativePathFilter == "" {
		return l.listTracksV1WithFilter(ctx, "")
	}
	return l.listTracksV1WithFilter(ctx, `WHERE t.relativePath = ?`, relativePathFilter)
}

func (l *Layer) listTracksV1WithFilter(ctx context.Context, filter string, args ...adapter.Value) ([]TrackRow, error) {
	var out []TrackRow
	err := l.Adapter.Query(ctx, musicAttachment,
		`SELECT t.id, t.relativePath, t.sampleRate, t.sampleCount, t.length, t.fileBytes
		 FROM Track t `+filter+` ORDER BY t.id`,
		func(row adapter.Row) error {
			id := toInt64(row[0])
			snap := TrackSnapshot{
				RelativePath: toOptString(row[1]),
				SampleRate:   toOptFloat(row[2]),
				SampleCount:  toOptUint64(row[3]),
				Duration:     toOptDurationMs(row[4]),
				FileBytes:    toOptUint64(row[5]),
			}
			out = append(out, TrackRow{ID: id, Snapshot: snap})
			return nil
		}, args...)
	if err != nil {
		return nil, wrapBackend("list_tracks", err)
	}

	for i := range out {
		if err := l.fillMetadataV1(ctx, out[i].ID, &out[i].Snapshot); err != nil {
			return nil, err
		}
		if err := l.fillPerformanceDataV1(ctx, out[i].ID, &out[i].Snapshot); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Layer) fillMetadataV1(ctx context.Context, id int64, snap *TrackSnapshot) error {
	err := l.Adapter.Query(ctx, musicAttachment,
		`SELECT type, text FROM MetaData WHERE id = ?`,
		func(row adapter.Row) error {
			kind := toInt64(row[0])
			text, _ := row[1].(string)
			assignMetaString(snap, int(kind), text)
			return nil
		}, id)
	if err != nil {
		return wrapBackend("track_by_id", err)
	}

	return l.Adapter.Query(ctx, musicAttachment,
		`SELECT type, value FROM MetaDataInteger WHERE id = ?`,
		func(row adapter.Row) error {
			kind := toInt64(row[0])
			value := toInt64(row[1])
			assignMetaInt(snap, int(kind), value)
			return nil
		}, id)
}

func assignMetaString(snap *TrackSnapshot, kind int, text string) {
	s := text
	switch kind {
	case metaAlbum:
		snap.Album = &s
	case metaArtist:
		snap.Artist = &s
	case metaComment:
		snap.Comment = &s
	case metaComposer:
		snap.Composer = &s
	case metaGenre:
		snap.Genre = &s
	case metaPublisher:
		snap.Publisher = &s
	case metaTitle:
		snap.Title = &s
	}
}

func assignMetaInt(snap *TrackSnapshot, kind int, value int64) {
	i := int(value)
	switch kind {
	case metaIntBitrate:
		snap.Bitrate = &i
	case metaIntBPM:
		snap.BPM = &i
	case metaIntTrackNumber:
		snap.TrackNumber = &i
	case metaIntYear:
		snap.Year = &i
	case metaIntRating:
		snap.Rating = &i
	case metaIntKey:
		k := musicalKeyFromInt(value)
		snap.Key = &k
	case metaIntLastPlayedAt:
		t := time.Unix(value, 0).UTC()
		snap.LastPlayedAt = &t
	}
}

func (l *Layer) fillPerformanceDataV1(ctx context.Context, id int64, snap *TrackSnapshot) error {
	var raw rawBlobs
	found := false
	err := l.Adapter.Query(ctx, perfAttachment,
		`SELECT trackData, overviewWaveFormData, beatData, quickCues, loops, highResolutionWaveFormData
		 FROM PerformanceData WHERE id = ?`,
		func(row adapter.Row) error {
			raw.trackData, _ = row[0].([]byte)
			raw.overview, _ = row[1].([]byte)
			raw.beatData, _ = row[2].([]byte)
			raw.quickCues, _ = row[3].([]byte)
			raw.loops, _ = row[4].([]byte)
			raw.highRes, _ = row[5].([]byte)
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
