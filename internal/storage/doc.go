// Package storage owns the embedded record store: the SQLite engine with
// its single-transaction discipline, the generic row decoder, one
// repository per record table and the cross-table cascade that keeps
// dependent records consistent when an account is renamed or deleted.
package storage
