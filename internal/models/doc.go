// Package models defines the core domain models for the bill splitter.
//
// # Models
//
//   - Bill: one live bill-splitting session (items, people, tip/tax policies)
//   - Item: a priced line on the bill with the people sharing it
//   - VendorInfo: optional receipt header captured during extraction
//
// Participants are identified by display name, unique within a bill. There
// are no user accounts: a bill session is anonymous and addressed by its ID.
//
// # Design notes
//
//  1. Money is stored in integer cents (money.Money); decimal dollars exist
//     only at the API boundary.
//  2. Split results are never stored. They are recomputed from the bill
//     snapshot on every request, so models carry inputs only.
//  3. Tip and tax reuse split.ChargePolicy so the stored policies are the
//     exact values the engine consumes.
package models
