// Package account implements the account lifecycle: registration with ordered,
// accumulating validation; activation code issuance; and the pending to activated
// transition guarded by credential and code checks.
//
// Persistence is reached only through Store. PostgresStore, MongoStore and
// MemoryStore implement it.
package account
