// Package cache defines the remote cache collaborator used by the restore and
// save orchestrators. A Service stores compressed archives of a set of
// directories under a key; restore performs exact-then-prefix matching over a
// primary key and ordered restore keys. The archive format (tar + zstd) and the
// version hash are shared by every backend so entries stay interchangeable.
package cache
