// Package content defines the content-store record model consumed by the
// publishing engine: documents, layout and fragment schemas, fragment
// instances and the site-wide configuration record.
package content
