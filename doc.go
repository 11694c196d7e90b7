// Package kasir provides the core of a single-tenant point-of-sale for small
// retail shops. It is designed to be local-first: one owner, one device, and
// every state change persisted as soon as it happens.
//
// The core functionalities include:
//   - Catalog Management: the sellable products, their price and their stock
//     count, which never goes below zero.
//   - Cart and Pricing: a transient selection of products priced on demand
//     from a subtotal, a tax rate and an absolute discount.
//   - Checkout: turning a priced cart into an immutable Transaction, appending
//     it to the Ledger and decrementing the catalog stock in one step.
//   - Reporting: revenue, net income, daily sales series and restock alerts
//     derived from the Ledger and the Catalog.
//   - Data Persistence: encoding the catalog and the ledger to and from
//     human-readable JSONL, and exporting the ledger as CSV.
//
// The Shop type binds all of this to a durable key/value store (see package
// store) and is the foundation of the `ksr` command-line tool.
package kasir
