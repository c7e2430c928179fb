// Package gitrepo infers the source context of the working copy an audit is
// scheduled from.
//
// CommandInferrer shells out to git through execshell, LibraryInferrer reads
// the repository with go-git. Both report the same closed set of failures:
// no repository, no origin remote, an unparsable remote, and no commit.
package gitrepo
