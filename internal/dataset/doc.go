// Package dataset loads the record table and checks its schema.
//
// A Loader walks an ordered chain of Strategy implementations (xlsx first
// sheet, xlsx header scan, delimited text) and keeps the first table that
// parses. When the file is absent or every strategy fails the returned
// *LoadError carries the working directory and its listing so operators can
// see what the process was looking at.
//
// Validate enforces the required columns; IndexColumns and ResolveIndexColumn
// discover the keyword-matched index columns.
package dataset
