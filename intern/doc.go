// Package intern implements the interning contract shared by the symbol and
// record tables: a canonical, concurrent mapping from content to a dense
// integer id and back.
//
// The content-to-id index is a ShardedMap: keys hash (xxhash) to one of a
// power-of-two number of shards, each guarded by its own RWMutex. A lookup
// that hits takes only its shard's read lock. A miss re-probes under the
// shard's write lock before inserting, so exactly one caller creates the
// entry for a given content and every racing caller observes its id. With
// Config.NumShards == 1 this degrades to a single table-wide lock with the
// same double-checked insert.
//
// The id-to-content index lives in a Store: an append-only segmented.Array
// whose slots never move and are published atomically, so content returned by
// Resolve stays valid for the life of the table. Several tables may share a
// Store to issue ids from one dense space.
//
// Violations of the table's invariants (resolving an id the table never
// issued, running out of id space) are not recoverable. They are logged and
// raised as a panic carrying one of the sentinel errors below.
package intern
