// Package buildcontext detects the CI provider running the audit and merges its
// metadata with the source context inferred from the working copy.
package buildcontext
