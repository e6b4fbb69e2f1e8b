// Package build provides the canonical build execution pipeline for mdxsite.
//
// A build discovers the source tree, parses every document into a page,
// collects the pages in a site registry, renders them into a staging
// directory, copies assets, verifies internal links, writes the manifest and
// finally promotes staging over the output directory. The first failure stops
// the build and leaves the previous output untouched. All execution paths
// (CLI commands, tests) route through Service.
package build
