// Package domain models National UFO Reporting Center (NUFORC) sighting
// reports and the cleaning rules applied to them.
//
// # Data Source
//
// Reports come from the public NUFORC export (nuforc_reports.csv), one row per
// report with the columns:
//
//	summary, city, state, date_time, shape, duration, stats, report_link,
//	text, posted, city_latitude, city_longitude
//
// The raw table is held as a gota DataFrame with every column typed as text.
// Cells matching one of [NullTokens] are missing values.
//
// # NUFORC Data Conventions
//
// Coordinates:
//
//	city_latitude / city_longitude are the geocoded centroid of the reported
//	city, not the observer position. Both are blank for roughly a fifth of the
//	export, always together in practice. They are renamed to latitude and
//	longitude before cleaning (see [ColumnAliases]).
//
// Stats:
//
//	A free-text header block. The occurrence date is the leading
//	"Occurred : M/D/YYYY" fragment, e.g.
//	"Occurred : 7/4/2015 21:00  (Entered as : 07/04/15 21:00) Reported: ..."
//	Month and day are one or two digits, the year four. Anything else yields a
//	missing date. Extracted by [ExtractDate].
//
// Shape:
//
//	Observer-selected category ("light", "circle", "triangle", ...). Missing
//	shapes default to "light", the most common category.
//
// Duration:
//
//	Observer free text ("5 minutes", "2-3 seconds"). Missing durations are
//	imputed with the most frequent value. Ties resolve to the lexicographically
//	smallest value so results do not depend on row order.
//
// # Cleaning Order
//
// Rows without latitude are dropped before durations are imputed because the
// drop changes which duration is most frequent. See [Clean] for the full
// sequence.
//
// # ID Generation
//
// Sighting IDs are deterministic SHA-256 prefixes of state|city|lat|lon|date|summary,
// so republishing the same cleaned table produces the same keys downstream.
package domain
