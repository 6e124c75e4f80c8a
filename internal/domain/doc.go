// Package domain models the July 1931 Grand Island pumping test (USGS
// Water-Supply Paper 887, Wenzel 1942) and the derived quantities used to
// check it visually.
//
// # Data Source
//
// Each observation well has one CSV file named
// "grand-island-test-wenzel-<id>.csv" holding rows of
//
//	date,time,drawdown_ft
//
// after a single header row. A separate metadata file
// ("grand-island-test-wenzel-info.csv") lists every well with its line,
// casing diameter, screen geometry, measuring point and radial distance
// from the pumped well (well 83).
//
// # Well Conventions
//
// Observation wells sit on radial lines away from well 83. A well identifier
// is its number followed by its line code, e.g. "12A" or "3SW". Line codes
// are one letter except "SW". Well 83 has no natural line; it is assigned to
// line A wherever a line is required for colouring. See [LineOf].
//
// Elevation references follow the metadata schema:
//
//	BMP   below measuring point (screen depth, water level)
//	ALS   above land surface (measuring-point height)
//	AMSL  above mean sea level (measuring-point altitude)
//
// so land surface is elevation - measuring-point height and the water table
// is elevation - water level.
//
// # Time
//
// Elapsed time is minutes since pumping began (29 July 1931 06:05). Pumping
// stopped on 31 July at 06:04, 2879 minutes later; samples after the stop
// belong to the recovery limb and are left out of the derivative fit.
//
// # Geometry
//
// Every line has a bearing measured on the Wenzel map with east = 0 and
// north = 90 degrees. Wells are placed at (r cos θ, r sin θ) around well 83
// at the origin. See [ResolveCoordinates].
package domain
