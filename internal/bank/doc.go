// Package bank holds the ledger, the album aggregation pipeline and the
// two-phase redemption flow. It talks to storage through the repository
// package and to the outside world through small interfaces, so the
// chat transport and the vision service stay pluggable.
package bank
