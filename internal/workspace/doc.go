// Package workspace stages build output in a sibling directory and promotes it
// over the previous output only once the whole build has succeeded.
//
// A failed build removes the staging directory and leaves the previous output
// untouched. On promotion, entries of the previous output whose names start with
// "." or "_" are carried into the new output unless the build produced an entry
// with the same name.
package workspace
