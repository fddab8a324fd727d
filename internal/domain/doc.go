// Package domain models environmental sensor snapshots delivered by a live feed.
//
// # Feed Format
//
// The feed is a long-lived HTTP response carrying server-sent-event style
// lines. A data-bearing line looks like:
//
//	data: [{"lat":12.84,"lon":80.15,"temperature":61.2,"uv":5.1,"humidity":70.4,"pressure":1003.5,"airQuality":88.0}, ...]
//
// Each data line carries the complete state of every monitored point. Blank
// lines, comments and keep-alives are skipped. See [ParseLine].
//
// # Snapshots
//
// A [Snapshot] replaces the previous one in full. Points carry no identity
// beyond their coordinates, and the same coordinates in two snapshots are not
// correlated.
//
// # Severity classification
//
// Each point is labeled against a [ThresholdSet] holding one
// critical/warning cutoff pair per field. Bounds are inclusive:
//
//	any field >= its critical cutoff  -> CRITICAL
//	any field >= its warning cutoff   -> WARNING
//	otherwise                         -> OK
//
// Cutoffs are external configuration. Feed generators disagree on value
// ranges, so no default is assumed to match any particular deployment.
//
// # Means
//
// [Aggregate] computes the plain unweighted mean of each field. An empty
// snapshot yields "no data" for every field. NaN readings are not cleaned and
// poison the mean of the field they appear in.
//
// # Color bands
//
// Map markers are colored by temperature with a fixed step function:
//
//	< 50        cool
//	50 .. < 60  moderate
//	>= 60       hot
package domain
