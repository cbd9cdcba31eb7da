// Package library implements the lending core of a small lending library: the catalog with
// per-edition stock, the member registry, each member's lending ledger, the fee engine and the
// borrow/return operations that tie them together.
//
// A System is loaded in full, mutated by one operation and saved in full. Operations either
// apply completely or fail with one of the sentinel errors and leave the System unchanged.
package library
