// Package render turns a content document into HTML.
//
// A Resolver binds a page to its layout and builds the RenderContext:
// site-wide globals plus the document's own fields. A Composer expands
// nested fragment instances into HTML and writes the result back into the
// context. The layout Template is then executed against the merged scope
// and InjectBranding stamps the output.
//
// Layout and fragment templates are compiled once per run into a Table,
// which is read-only afterwards and safe for concurrent use.
package render
