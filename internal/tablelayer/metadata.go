package tablelayer

// v1 metadata type keys. Every string-valued snapshot field lives in
// MetaData keyed by one of these; every integer-valued one in
// MetaDataInteger. The table layer hides this key-value shape behind the
// same TrackSnapshot reader/writer v2/v3's flat columns use.
const (
	metaAlbum = iota + 1
	metaArtist
	metaComment
	metaComposer
	metaGenre
	metaPublisher
	metaTitle
	// metaFileExtension and metaDurationDisplay are derived, not stored on
	// TrackSnapshot directly: they are computed from RelativePath and
	// Duration at write time, per the create_track derived-fields rule.
	metaFileExtension
	metaDurationDisplay
)

const (
	metaIntBitrate = iota + 1
	metaIntBPM
	metaIntTrackNumber
	metaIntYear
	metaIntRating
	metaIntKey
	metaIntLastPlayedAt
)
