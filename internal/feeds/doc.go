// Package feeds renders the sitemap, Atom and JSON listings of published
// pages and uploads them next to the HTML artifacts. Each feed is
// independent: one that fails to load or render is reported in its
// Outcome and the rest still run.
package feeds
