// Package budget is the data layer of a personal finance tracker: it records
// expenses, incomes and transfers between accounts, categorizes them and
// derives read-only views from them.
//
// The main pieces are:
//   - Store: the in-memory value of every collection, persisted
//     asynchronously to a Backend.
//   - Ledger: the operations that create, update and delete records while
//     keeping account balances consistent with them.
//   - Snapshot: name lookups, the journal, account ledgers, the dashboard and
//     category breakdowns.
//   - Coordinator: selects the guest or the user's Backend from the
//     authentication state, and initializes the data of new users.
//
// Data lives in guest storage (package local) or in a per-user document store
// (package remote). This package serves as the foundation of the `pft`
// command-line tool and of its HTTP API.
package budget
