// Package service holds the order core and its thin collaborators.
package service

const defaultPageSize = 20

// maxProductQuantity caps the units of one product in a single order,
// summed across duplicate lines. Matches the per-line validate tag.
const maxProductQuantity = 10000
