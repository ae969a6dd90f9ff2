// Package gateway adapts the snake_case transport API to the workflow's
// Fetcher and Updater contracts. Transport errors stop here: they are logged
// and turned into the onError callback.
package gateway
