package track

import "errors"

// Precondition violations reported by Assemble. They are always wrapped
// with the offending cell or layer; test with errors.Is.
var (
	ErrEmptyGrid          = errors.New("track: empty segment grid")
	ErrRaggedGrid         = errors.New("track: ragged segment grid")
	ErrSegmentSize        = errors.New("track: invalid segment size")
	ErrTileSize           = errors.New("track: tile size mismatch")
	ErrLayerShape         = errors.New("track: layer shape mismatch")
	ErrRowHeight          = errors.New("track: row height mismatch")
	ErrColumnWidth        = errors.New("track: column width mismatch")
	ErrNoTrackLayer       = errors.New("track: no track object layer")
	ErrNoFinishCandidates = errors.New("track: no finish-line candidates")
	ErrSelection          = errors.New("track: selector returned no valid element")
	ErrSpent              = errors.New("track: assembler already used")
)
