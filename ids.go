package clipseq

// Identifiers are opaque, stable strings. Each entity kind has its own type
// so that a pattern id can never be passed where a clip id is expected.
type (
	PatternID    string
	TransformID  string
	ScaleID      string
	ClipID       string
	TrackID      string
	SceneID      string
	InstrumentID string
	PoolID       string
)
