// Package models defines the domain records for praktyka.
//
// Every record except User carries a UserID and is visible only to that
// owning user. Monetary amounts and revenue-share percents are
// shopspring decimals, parsed and validated at the API boundary;
// earnings are always derived from amount and percent, never stored.
//
// # Design Principles
//
//  1. Relationships use ID strings instead of pointers to avoid
//     circular references (Transaction -> Employer, Invoice -> Employer).
//  2. Validation lives next to the record it guards and reports every
//     bad field at once, so the API can return a per-field error list.
//  3. Invoices are write-once: they exist only as the local record of a
//     successfully issued external invoice.
package models
